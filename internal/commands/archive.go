package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/FACorreiaa/finance-dashboard/pkg/config"
)

func newArchiveCommand(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect and manage archived statement uploads",
	}

	cmd.AddCommand(
		newArchiveListCommand(cfg, logger),
		newArchiveParseCommand(cfg, logger),
		newArchiveDeleteCommand(cfg, logger),
	)
	return cmd
}

// archiveDeps opens the archive for a user given on the command line.
func archiveDeps(cfg *config.Config, logger *slog.Logger, flags parserFlags, user string) (*Dependencies, uuid.UUID, error) {
	userID, err := uuid.Parse(user)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("--user: %w", err)
	}

	deps, err := InitDependencies(cfg, logger, flags)
	if err != nil {
		return nil, uuid.Nil, err
	}
	if err := deps.initFileStorage(); err != nil {
		return nil, uuid.Nil, err
	}
	return deps, userID, nil
}

func parseFileID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("file id: %w", err)
	}
	return id, nil
}

func newArchiveListCommand(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's archived statements, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, userID, err := archiveDeps(cfg, logger, parserFlags{}, user)
			if err != nil {
				return err
			}

			files, err := deps.FileStorage.List(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), files)
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id the uploads are archived under")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newArchiveParseCommand(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	var flags parserFlags
	var user, format string

	cmd := &cobra.Command{
		Use:   "parse FILE_ID",
		Short: "Parse an archived statement again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatJSON && format != formatCSV {
				return fmt.Errorf("unknown format %q (want json or csv)", format)
			}
			fileID, err := parseFileID(args[0])
			if err != nil {
				return err
			}
			deps, userID, err := archiveDeps(cfg, logger, flags, user)
			if err != nil {
				return err
			}

			rc, info, err := deps.FileStorage.Open(cmd.Context(), userID, fileID)
			if err != nil {
				return err
			}
			data, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return fmt.Errorf("reading archived statement: %w", err)
			}

			deps.Logger.Debug("reparsing archived statement", "file", info.Name, "statement", info.StatementID)
			return parseData(cmd, deps, info.Name, data, format, "")
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id the upload is archived under")
	cmd.Flags().StringVar(&flags.encoding, "encoding", "", "encoding to try first (IANA name)")
	cmd.Flags().StringVar(&flags.delimiter, "delimiter", "", "field delimiter; detected when empty")
	cmd.Flags().StringVar(&format, "format", formatJSON, "output format: json or csv")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newArchiveDeleteCommand(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "delete FILE_ID",
		Short: "Delete an archived statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fileID, err := parseFileID(args[0])
			if err != nil {
				return err
			}
			deps, userID, err := archiveDeps(cfg, logger, parserFlags{}, user)
			if err != nil {
				return err
			}

			info, err := deps.FileStorage.Info(cmd.Context(), userID, fileID)
			if err != nil {
				return err
			}
			if err := deps.FileStorage.Delete(cmd.Context(), userID, fileID); err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "deleted %s (%s)\n", info.Name, info.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id the upload is archived under")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
