package categorization

// KeywordRule assigns Category to descriptions that contain Keyword as whole
// words. Aliases are tried, in order, when the user has no category that
// resolves to Category.
type KeywordRule struct {
	Keyword  string
	Category string
	Aliases  []string
	Priority int  // higher wins when several keywords match
	Income   bool // only applies to inflows
}

var (
	foodAliases      = []string{"Mercado", "Supermercado", "Restaurantes", "Comida"}
	transportAliases = []string{"Carro", "Combustível", "Mobilidade"}
	housingAliases   = []string{"Casa", "Contas", "Aluguel"}
	healthAliases    = []string{"Farmácia", "Saude e Bem-estar"}
	leisureAliases   = []string{"Entretenimento", "Assinaturas", "Streaming"}
	educationAliases = []string{"Cursos", "Estudos"}
	shoppingAliases  = []string{"Compras Online", "Vestuário"}
	incomeAliases    = []string{"Receitas", "Renda", "Entradas"}
)

// DefaultRules returns keyword rules for common Brazilian merchants and
// statement wording, mapped to the default category names.
func DefaultRules() []KeywordRule {
	rules := []KeywordRule{
		{Keyword: "salario", Category: "Salário", Priority: 30, Income: true},
		{Keyword: "folha de pagamento", Category: "Salário", Priority: 30, Income: true},
		{Keyword: "pro labore", Category: "Salário", Priority: 30, Income: true},
		{Keyword: "proventos", Category: "Salário", Priority: 25, Income: true},
		{Keyword: "rendimento", Category: "Salário", Priority: 20, Income: true},
		{Keyword: "pix recebido", Category: "Salário", Priority: 5, Income: true},
		{Keyword: "ted recebida", Category: "Salário", Priority: 5, Income: true},
	}
	for i := range rules {
		rules[i].Aliases = incomeAliases
	}

	add := func(category string, aliases []string, priority int, keywords ...string) {
		for _, kw := range keywords {
			rules = append(rules, KeywordRule{Keyword: kw, Category: category, Aliases: aliases, Priority: priority})
		}
	}

	add("Alimentação", foodAliases, 10,
		"ifood", "rappi", "padaria", "restaurante", "lanchonete", "pizzaria", "mercado", "supermercado",
		"carrefour", "pao de acucar", "assai", "atacadao", "hortifruti", "acougue", "mcdonalds", "burger king")
	add("Transporte", transportAliases, 10,
		"uber", "99app", "99 pop", "cabify", "posto", "combustivel", "shell", "ipiranga", "estacionamento",
		"metro", "onibus", "pedagio", "sem parar", "veloe", "bilhete unico")
	add("Moradia", housingAliases, 10,
		"aluguel", "condominio", "enel", "cemig", "light", "copel", "sabesp", "energia eletrica",
		"conta de luz", "conta de agua", "gas natural", "comgas", "iptu")
	add("Saúde", healthAliases, 10,
		"farmacia", "drogaria", "drogasil", "droga raia", "pague menos", "hospital", "clinica",
		"laboratorio", "unimed", "amil", "sulamerica", "dentista", "academia", "smart fit")
	add("Lazer", leisureAliases, 10,
		"netflix", "spotify", "disney", "hbo", "prime video", "globoplay", "cinema", "ingresso",
		"steam", "playstation", "xbox", "teatro")
	add("Educação", educationAliases, 10,
		"escola", "colegio", "faculdade", "universidade", "mensalidade escolar", "curso", "udemy",
		"alura", "coursera", "livraria")
	add("Compras", shoppingAliases, 10,
		"amazon", "magazine luiza", "magalu", "americanas", "shopee", "aliexpress", "shein",
		"renner", "riachuelo", "zara", "kabum", "casas bahia")
	// More specific than "mercado".
	add("Compras", shoppingAliases, 15, "mercado livre", "mercadolivre", "mercado pago")

	return rules
}
