package render

// section is one block of a document body. A section with a flag is only
// emitted when the data carries include_<flag> = true. Signature blocks are
// emitted only when the request asks for them.
type section struct {
	text      string
	flag      string
	signature bool
}

var bodies = map[string][]section{
	"programme-prevention": {
		{text: "# PROGRAMME DE PRÉVENTION\n\n" +
			"**Entreprise:** {{company_name}}\n" +
			"**Adresse:** {{company_address}}\n" +
			"**Nombre d'employés:** {{company_size}}"},
		{text: "## RÉFÉRENCES LÉGALES\n\n{{applicable_articles}}\n\n{{legal_references}}"},
		{text: "## 1. IDENTIFICATION DES RISQUES\n\n{{risk_inventory}}"},
		{text: "## 2. MESURES DE PRÉVENTION\n\n{{preventive_measures}}"},
		{text: "## 3. MÉCANISMES DE PARTICIPATION\n\n" +
			"Comité de santé et de sécurité du travail paritaire (article 101 de la LMRSST).\n\n" +
			"{{committee_members}}", flag: "comite_sst"},
		{text: "**Approuvé par le comité SST le:** _____________________", signature: true},
	},
	"plan-action": {
		{text: "# PLAN D'ACTION EN SANTÉ ET SÉCURITÉ\n\n" +
			"**Entreprise:** {{company_name}}\n" +
			"**Nombre d'employés:** {{company_size}}\n" +
			"**Agent de liaison:** {{alss_name}}"},
		{text: "## ACTIONS PRIORITAIRES\n\n{{priority_actions}}", flag: "plan_action"},
		{text: "**Signature de l'employeur:** _____________________\n" +
			"**Signature de l'ALSS:** _____________________", signature: true},
	},
	"registre-incidents": {
		{text: "# REGISTRE DES INCIDENTS ET ACCIDENTS\n\n" +
			"**Entreprise:** {{company_name}}\n" +
			"**Responsable:** {{responsible_person}}\n\n" +
			"Conforme à l'article 123 de la LMRSST."},
		{text: "| Date | Incident | Action prise |\n" +
			"|------|----------|--------------|\n" +
			"|      |          |              |"},
	},
	"agent-liaison": {
		{text: "# DÉSIGNATION D'AGENT DE LIAISON SST\n\n" +
			"**Entreprise:** {{company_name}}\n" +
			"**Agent désigné:** {{alss_name}}\n" +
			"**Poste:** {{alss_position}}\n\n" +
			"Conforme à l'article 101 de la LMRSST."},
		{text: "**Signature de l'employeur:** _____________________\n" +
			"**Signature de l'agent désigné:** _____________________", signature: true},
	},
}

var genericBody = []section{{text: "# Document SST\n\n{{company_name}}"}}
