package report

// Station is one plant known to the platform.
type Station struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
