package legal

import "docugen-workers/internal/models"

const legisQuebecLMRSST = "https://legisquebec.gouv.qc.ca/fr/document/lc/2021c27"

func sizeAtLeast(n int, desc string) models.ApplicabilityCondition {
	return models.ApplicabilityCondition{Kind: models.ConditionCompanySize, Operator: ">=", Value: n, Description: desc}
}

// Frameworks is the Québec SST legal ontology shipped with the service.
var Frameworks = []models.LegalFramework{
	{
		ID:          "LMRSST",
		Name:        "Loi modernisant le régime de santé et de sécurité du travail",
		Description: "Loi de modernisation 2021 étendant les mécanismes de prévention à tous les secteurs",
		Version:     "2021",
		LastUpdated: "2021-10-27",
		Articles: []models.LegalArticle{
			{
				ID: "LMRSST_90", FrameworkID: "LMRSST", Number: "90",
				Title:           "Programme de prévention obligatoire",
				Content:         "L'employeur doit élaborer et maintenir un programme de prévention adapté aux activités de son établissement.",
				Conditions:      []models.ApplicabilityCondition{sizeAtLeast(20, "Entreprises de 20 employés et plus")},
				RelatedSubjects: []string{"programme-prevention"},
				OfficialURL:     legisQuebecLMRSST,
			},
			{
				ID: "LMRSST_101", FrameworkID: "LMRSST", Number: "101",
				Title:           "Comité de santé et sécurité du travail",
				Content:         "L'employeur doit former un comité de santé et sécurité paritaire.",
				Conditions:      []models.ApplicabilityCondition{sizeAtLeast(20, "Entreprises de 20 employés et plus")},
				RelatedSubjects: []string{"comite-sst"},
				OfficialURL:     legisQuebecLMRSST,
			},
			{
				ID: "LMRSST_64", FrameworkID: "LMRSST", Number: "64",
				Title:   "Plan d'action SST simplifié",
				Content: "L'employeur peut établir un plan d'action en lieu et place du programme de prévention.",
				Conditions: []models.ApplicabilityCondition{
					{Kind: models.ConditionCompanySize, Operator: "<", Value: 20, Description: "Entreprises de moins de 20 employés"},
					{Kind: models.ConditionDate, Operator: ">=", Value: "2025-10-06", Description: "Applicable dès octobre 2025"},
				},
				RelatedSubjects: []string{"plan-action"},
				OfficialURL:     legisQuebecLMRSST,
			},
			{
				ID: "LMRSST_123", FrameworkID: "LMRSST", Number: "123",
				Title:           "Registre des incidents et accidents",
				Content:         "L'employeur doit tenir un registre des incidents et accidents de travail.",
				Conditions:      []models.ApplicabilityCondition{sizeAtLeast(1, "Toutes les entreprises")},
				RelatedSubjects: []string{"registre-incidents"},
				OfficialURL:     legisQuebecLMRSST,
			},
			{
				ID: "LMRSST_27", FrameworkID: "LMRSST", Number: "27",
				Title:           "Formation en santé et sécurité",
				Content:         "Formation obligatoire des membres du comité SST et des représentants.",
				Conditions:      []models.ApplicabilityCondition{sizeAtLeast(1, "Toutes les entreprises avec mécanismes de prévention")},
				RelatedSubjects: []string{"formation-sst"},
				OfficialURL:     legisQuebecLMRSST,
			},
		},
	},
	{
		ID:          "LSST",
		Name:        "Loi sur la santé et la sécurité du travail",
		Description: "Loi-cadre de prévention des lésions professionnelles au Québec",
		Version:     "S-2.1",
		LastUpdated: "2023-12-01",
		Articles: []models.LegalArticle{
			{
				ID: "LSST_51", FrameworkID: "LSST", Number: "51",
				Title:           "Obligations générales de l'employeur",
				Content:         "L'employeur doit prendre les mesures nécessaires pour protéger la santé et assurer la sécurité et l'intégrité physique du travailleur.",
				Conditions:      []models.ApplicabilityCondition{sizeAtLeast(1, "Tous les employeurs")},
				RelatedSubjects: []string{"obligations-employeur"},
				OfficialURL:     "https://legisquebec.gouv.qc.ca/fr/document/lc/S-2.1",
			},
		},
	},
	{
		ID:          "CSTC",
		Name:        "Code de sécurité pour les travaux de construction",
		Description: "Règlement spécifique aux chantiers de construction",
		Version:     "S-2.1, r.4",
		LastUpdated: "2024-01-15",
		Articles: []models.LegalArticle{
			{
				ID: "CSTC_2.4.1", FrameworkID: "CSTC", Number: "2.4.1",
				Title:   "Représentant en santé-sécurité sur chantier",
				Content: "Un représentant en santé-sécurité doit être désigné sur tout chantier de 10 travailleurs et plus.",
				Conditions: []models.ApplicabilityCondition{
					{Kind: models.ConditionSector, Operator: "==", Value: "construction", Description: "Secteur de la construction uniquement"},
					sizeAtLeast(10, "Chantiers de 10 travailleurs et plus"),
				},
				RelatedSubjects: []string{"representant-sst-chantier"},
				OfficialURL:     "https://legisquebec.gouv.qc.ca/fr/document/rc/S-2.1,%20r.4",
			},
		},
	},
	{
		ID:          "RBQ",
		Name:        "Régie du bâtiment du Québec - Codes",
		Description: "Codes de construction et de sécurité des bâtiments",
		Version:     "B-1.1",
		LastUpdated: "2024-03-01",
		Articles: []models.LegalArticle{
			{
				ID: "RBQ_CODE_SECURITE", FrameworkID: "RBQ", Number: "Chap. Bâtiment",
				Title:   "Code de sécurité - Exploitation des bâtiments",
				Content: "Exigences d'entretien et d'exploitation des dispositifs de sécurité des bâtiments.",
				Conditions: []models.ApplicabilityCondition{
					{Kind: models.ConditionActivity, Operator: "includes", Value: "exploitation-batiment", Description: "Propriétaires et exploitants de bâtiments"},
				},
				RelatedSubjects: []string{"securite-batiment"},
				OfficialURL:     "https://legisquebec.gouv.qc.ca/fr/document/rc/B-1.1,%20r.3",
			},
		},
	},
}

var (
	riskAll        = []models.RiskLevel{models.RiskLow, models.RiskMedium, models.RiskHigh, models.RiskCritical}
	riskLowMedium  = []models.RiskLevel{models.RiskLow, models.RiskMedium}
	riskMediumPlus = []models.RiskLevel{models.RiskMedium, models.RiskHigh, models.RiskCritical}
	riskHighPlus   = []models.RiskLevel{models.RiskHigh, models.RiskCritical}
	allSectors     = []string{models.AllSectors}
)

// Subjects are the SST topics a company may be legally required to address.
var Subjects = []models.SSTSubject{
	{ID: "programme-prevention", Name: "Programme de prévention", Category: "prevention", ApplicableLaws: []string{"LMRSST", "LSST"}, Sectors: allSectors, RiskLevels: riskMediumPlus},
	{ID: "plan-action", Name: "Plan d'action SST", Category: "prevention", ApplicableLaws: []string{"LMRSST"}, Sectors: allSectors, RiskLevels: riskLowMedium},
	{ID: "comite-sst", Name: "Comité de santé et sécurité du travail", Category: "prevention", ApplicableLaws: []string{"LMRSST", "LSST"}, Sectors: allSectors, RiskLevels: riskMediumPlus},
	{ID: "representant-sst", Name: "Représentant en santé-sécurité", Category: "prevention", ApplicableLaws: []string{"LMRSST"}, Sectors: allSectors, RiskLevels: riskMediumPlus},
	{ID: "representant-sst-chantier", Name: "Représentant SST sur chantier", Category: "prevention", ApplicableLaws: []string{"CSTC"}, Sectors: []string{"construction"}, RiskLevels: riskHighPlus},
	{ID: "agent-liaison", Name: "Agent de liaison en santé-sécurité (ALSS)", Category: "prevention", ApplicableLaws: []string{"LMRSST"}, Sectors: allSectors, RiskLevels: riskLowMedium},
	{ID: "registre-incidents", Name: "Registre des incidents et accidents", Category: "surveillance", ApplicableLaws: []string{"LMRSST"}, Sectors: allSectors, RiskLevels: riskAll},
	{ID: "formation-sst", Name: "Formation en santé et sécurité", Category: "formation", ApplicableLaws: []string{"LMRSST", "LSST"}, Sectors: allSectors, RiskLevels: riskAll},
	{ID: "epi", Name: "Équipements de protection individuelle", Category: "protection", ApplicableLaws: []string{"LSST", "CSTC"}, Sectors: allSectors, RiskLevels: riskMediumPlus},
	{ID: "simdut", Name: "SIMDUT 2015", Category: "formation", ApplicableLaws: []string{"LSST"}, Sectors: []string{"manufacturier", "construction", "santé", "agriculture"}, RiskLevels: riskMediumPlus},
	{ID: "espaces-confines", Name: "Travail en espaces confinés", Category: "protection", ApplicableLaws: []string{"LSST", "CSTC"}, Sectors: []string{"manufacturier", "construction", "transport"}, RiskLevels: []models.RiskLevel{models.RiskCritical}},
	{ID: "travail-hauteur", Name: "Travail en hauteur", Category: "protection", ApplicableLaws: []string{"LSST", "CSTC"}, Sectors: []string{"construction", "manufacturier"}, RiskLevels: riskHighPlus},
	{ID: "securite-batiment", Name: "Sécurité des bâtiments", Category: "protection", ApplicableLaws: []string{"RBQ"}, Sectors: allSectors, RiskLevels: []models.RiskLevel{models.RiskMedium, models.RiskHigh}},
}

var Sectors = []models.SectorDefinition{
	{ID: "construction", Name: "Construction", SCIANCodes: []string{"23"}, RiskProfile: models.RiskCritical,
		SpecificRequirements: []string{"Représentant SST dès 10 travailleurs", "Comité de chantier selon taille", "Coordonnateur SST sur grands chantiers"}},
	{ID: "manufacturier", Name: "Fabrication manufacturière", SCIANCodes: []string{"31", "32", "33"}, RiskProfile: models.RiskHigh,
		SpecificRequirements: []string{"SIMDUT pour produits chimiques", "Cadenassage des machines", "Protection auditive"}},
	{ID: "transport", Name: "Transport et entreposage", SCIANCodes: []string{"48", "49"}, RiskProfile: models.RiskMedium,
		SpecificRequirements: []string{"Formation conduite sécuritaire", "Procédures de chargement", "Gestion de la fatigue"}},
	{ID: "santé", Name: "Soins de santé et assistance sociale", SCIANCodes: []string{"62"}, RiskProfile: models.RiskHigh,
		SpecificRequirements: []string{"Protection contre agents biologiques", "Manutention sécuritaire des patients", "Gestion du stress"}},
	{ID: "services", Name: "Services professionnels et administratifs", SCIANCodes: []string{"54", "55", "56"}, RiskProfile: models.RiskLow,
		SpecificRequirements: []string{"Ergonomie des postes de travail", "Prévention des RPS", "Qualité de l'air"}},
	{ID: "commerce", Name: "Commerce de détail", SCIANCodes: []string{"44", "45"}, RiskProfile: models.RiskMedium,
		SpecificRequirements: []string{"Prévention des chutes", "Sécurité lors des vols", "Manutention sécuritaire"}},
}
