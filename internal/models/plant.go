package models

// PlantInfo describes a classified plant as returned by the vision model.
type PlantInfo struct {
	CommonName     string `json:"commonName"`
	ScientificName string `json:"scientificName"`
	Description    string `json:"description"`
	Origin         string `json:"origin"`
	Sunlight       string `json:"sunlight"`
	Water          string `json:"water"`
	GrowthRate     string `json:"growthRate"`
}
