package tsme

import "time"

// envelope wraps every public-api response. Its code field varies in type across endpoints and
// is never decoded.
type envelope[T any] struct {
	Message string `json:"message"`
	Content T      `json:"content"`
}

type MetersList struct {
	NbCodeRef          int                `json:"nbCodeRef"`
	NbCodeRefFull      int                `json:"nbCodeRefFull"`
	NbCompteurFull     int                `json:"nbCompteurFull"`
	NbMeters           int                `json:"nbMeters"`
	ClientCompteursPro []CustomerMeterSet `json:"clientCompteursPro"`
}

// CustomerMeterSet is one customer reference of the account and the meters attached to it.
type CustomerMeterSet struct {
	Reference        string  `json:"reference"`
	Name             string  `json:"name"`
	NbCompteurTotal  int     `json:"nbCompteurTotal"`
	NombreCompteurTr int     `json:"nombreCompteurTr"`
	NombreCompteurRr int     `json:"nombreCompteurRr"`
	NombreCompteurSe int     `json:"nombreCompteurSe"`
	CompteursPro     []Meter `json:"compteursPro"`
}

type Meter struct {
	IDPDS             string `json:"idPDS"`
	IDSite            string `json:"idSite"`
	MatriculeCompteur string `json:"matriculeCompteur"`
	CodeEquipement    string `json:"codeEquipement"`
	EtatPDS           string `json:"etatPDS"`
}

type Telemetry struct {
	Measures []Measure `json:"measures"`
}

// Measure is a raw telemetry point. Date is "2006-01-02 15:04:05" in the provider's timezone.
type Measure struct {
	Date   string   `json:"date"`
	Index  *float64 `json:"index"`
	Volume float64  `json:"volume"`
}

// MeteringRecord is one daily consumption point.
type MeteringRecord struct {
	Date   time.Time
	Index  *float64
	Volume float64
}
