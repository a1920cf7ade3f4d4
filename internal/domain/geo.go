package domain

// Country is a destination country, e.g. "wlochy" for "Włochy".
type Country struct {
	Identifier string         `json:"identifier"`
	Title      string         `json:"title"`
	Cities     *Ordered[City] `json:"cities"`
}

func NewCountry(id, title string) *Country {
	return &Country{Identifier: id, Title: title, Cities: NewOrdered[City]()}
}

// City is called a "province" by the source API.
type City struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
}
