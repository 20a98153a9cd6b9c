// Package catalog ships the static reference data: recurring maintenance and
// SSM/PSI check cards and the compliance questionnaires.
package catalog

import (
	"github.com/okian/wardwatch/internal/domain/model"
)

// Card ids referenced by the severity table in the scoring package.
const (
	CardMedicalGas        = "medical-gas"
	CardGenerator         = "generator-test"
	CardElevators         = "elevators-iscir"
	CardBoilers           = "boilers-iscir"
	CardSterilizers       = "sterilizers"
	CardUPS               = "ups-batteries"
	CardHVAC              = "hvac-filters"
	CardLegionella        = "water-legionella"
	CardElectricalPanels  = "electrical-panels"
	CardFireAlarm         = "psi-fire-alarm"
	CardExtinguishers     = "psi-extinguishers"
	CardHydrants          = "psi-hydrants"
	CardEmergencyLighting = "psi-emergency-lighting"
	CardEvacuationPlan    = "psi-evacuation-plan"
	CardSSMInduction      = "ssm-induction"
	CardSSMMedical        = "ssm-medical-check"
	CardSSMEIP            = "ssm-eip-issue"
	CardPestControl       = "pest-control"
)

var maintenanceCards = []model.MaintenanceCard{
	{ID: CardMedicalGas, Title: "Rețea gaze medicale", Frequency: "lunar", Critical: true,
		Fields: []string{"presiune O2", "presiune vacuum", "alarme"}, Tags: []string{"ati", "bloc operator"}},
	{ID: CardGenerator, Title: "Grup electrogen - probă în sarcină", Frequency: "lunar", Critical: true,
		Fields: []string{"timp pornire", "nivel combustibil", "ore funcționare"}},
	{ID: CardElevators, Title: "Ascensoare - verificare ISCIR", Frequency: "anual",
		Fields: []string{"număr autorizație", "scadență"}, Tags: []string{"iscir"}},
	{ID: CardBoilers, Title: "Cazane - verificare ISCIR", Frequency: "anual",
		Fields: []string{"număr autorizație", "scadență"}, Tags: []string{"iscir"}},
	{ID: CardSterilizers, Title: "Autoclave - test Bowie-Dick", Frequency: "zilnic", Critical: true,
		Fields: []string{"rezultat test", "lot"}, Tags: []string{"sterilizare"}},
	{ID: CardUPS, Title: "UPS - test baterii", Frequency: "trimestrial",
		Fields: []string{"autonomie", "temperatură"}},
	{ID: CardHVAC, Title: "Climatizare - schimb filtre", Frequency: "trimestrial",
		Fields: []string{"tip filtru", "diferență presiune"}},
	{ID: CardLegionella, Title: "Apă caldă - control Legionella", Frequency: "semestrial",
		Fields: []string{"temperatură", "buletin analiză"}},
	{ID: CardElectricalPanels, Title: "Tablouri electrice - termografie", Frequency: "anual",
		Fields: []string{"puncte calde", "raport"}},
	{ID: CardPestControl, Title: "Dezinsecție și deratizare", Frequency: "trimestrial",
		Fields: []string{"firmă", "proces-verbal"}},
}

var safetyCards = []model.MaintenanceCard{
	{ID: CardFireAlarm, Title: "Sistem detecție incendiu", Frequency: "lunar", Critical: true,
		Fields: []string{"zone testate", "defecte"}, Tags: []string{"psi"}},
	{ID: CardExtinguishers, Title: "Stingătoare - verificare", Frequency: "anual",
		Fields: []string{"număr", "scadență"}, Tags: []string{"psi"}},
	{ID: CardHydrants, Title: "Hidranți interiori - probă", Frequency: "semestrial",
		Fields: []string{"presiune", "debit"}, Tags: []string{"psi"}},
	{ID: CardEmergencyLighting, Title: "Iluminat de siguranță", Frequency: "lunar",
		Fields: []string{"corpuri defecte"}, Tags: []string{"psi"}},
	{ID: CardEvacuationPlan, Title: "Planuri de evacuare afișate", Frequency: "anual",
		Fields: []string{"clădire", "revizie"}, Tags: []string{"psi"}},
	{ID: CardSSMInduction, Title: "Instruire SSM la angajare", Frequency: "la angajare",
		Fields: []string{"angajat", "fișă instruire"}, Tags: []string{"ssm"}},
	{ID: CardSSMMedical, Title: "Control medical periodic", Frequency: "anual",
		Fields: []string{"angajat", "aviz"}, Tags: []string{"ssm"}},
	{ID: CardSSMEIP, Title: "Echipament individual de protecție", Frequency: "la expirare",
		Fields: []string{"angajat", "articol"}, Tags: []string{"ssm"}},
}

// Questionnaire ids.
const (
	QuestionnaireInfectionControl = "infection-control"
	QuestionnaireFireSafety       = "fire-safety"
	QuestionnaireWaste            = "medical-waste"
)

var questionnaires = []model.Questionnaire{
	{
		ID:    QuestionnaireInfectionControl,
		Title: "Prevenirea infecțiilor asociate asistenței medicale",
		Questions: []model.Question{
			{ID: "ic-1", Text: "Există protocol de igienă a mâinilor afișat în secție?", RequiresEvidence: true},
			{ID: "ic-2", Text: "Dezinfectantul este disponibil la fiecare pat?"},
			{ID: "ic-3", Text: "Circuitele curat/murdar sunt respectate?"},
			{ID: "ic-4", Text: "Este completat registrul de curățenie?", RequiresEvidence: true},
		},
	},
	{
		ID:    QuestionnaireFireSafety,
		Title: "Securitate la incendiu",
		Questions: []model.Question{
			{ID: "fs-1", Text: "Căile de evacuare sunt libere?"},
			{ID: "fs-2", Text: "Stingătoarele sunt în termen de verificare?", RequiresEvidence: true},
			{ID: "fs-3", Text: "Personalul a participat la exercițiul de evacuare?"},
		},
	},
	{
		ID:    QuestionnaireWaste,
		Title: "Gestionarea deșeurilor medicale",
		Questions: []model.Question{
			{ID: "mw-1", Text: "Recipientele sunt etichetate corespunzător?"},
			{ID: "mw-2", Text: "Spațiul de depozitare temporară este securizat?"},
			{ID: "mw-3", Text: "Există contract valabil cu operatorul de eliminare?", RequiresEvidence: true},
		},
	},
}

// MaintenanceCards returns a copy of the technical maintenance catalog.
func MaintenanceCards() []model.MaintenanceCard {
	return cloneCards(maintenanceCards)
}

// SafetyCards returns a copy of the SSM/PSI catalog.
func SafetyCards() []model.MaintenanceCard {
	return cloneCards(safetyCards)
}

// AllCards returns maintenance and safety cards together.
func AllCards() []model.MaintenanceCard {
	return append(MaintenanceCards(), SafetyCards()...)
}

// Questionnaires returns a copy of every questionnaire.
func Questionnaires() []model.Questionnaire {
	out := make([]model.Questionnaire, len(questionnaires))
	for i, q := range questionnaires {
		out[i] = q
		out[i].Questions = append([]model.Question(nil), q.Questions...)
	}
	return out
}

// Questionnaire looks a questionnaire up by id.
func Questionnaire(id string) (model.Questionnaire, bool) {
	for _, q := range Questionnaires() {
		if q.ID == id {
			return q, true
		}
	}
	return model.Questionnaire{}, false
}

func cloneCards(in []model.MaintenanceCard) []model.MaintenanceCard {
	out := make([]model.MaintenanceCard, len(in))
	for i, c := range in {
		out[i] = c
		out[i].Fields = append([]string(nil), c.Fields...)
		out[i].Tags = append([]string(nil), c.Tags...)
	}
	return out
}
