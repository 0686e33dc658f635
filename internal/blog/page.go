package blog

// Meta describes one page of a listing.
type Meta struct {
	Total        int `json:"total"`
	Pagina       int `json:"pagina"`
	Limite       int `json:"limite"`
	PaginasTotal int `json:"paginasTotal"`
}

// Paginate returns page pagina (1-based) of size limite together with its
// meta. Out-of-range pages yield an empty, non-nil slice. pagina and limite
// must already be validated as positive.
func Paginate[T any](items []T, pagina, limite int) ([]T, Meta) {
	meta := Meta{Total: len(items), Pagina: pagina, Limite: limite}
	if limite <= 0 || pagina <= 0 {
		return []T{}, meta
	}
	meta.PaginasTotal = (len(items) + limite - 1) / limite

	// Checked before multiplying so huge page numbers cannot overflow.
	if pagina > meta.PaginasTotal {
		return []T{}, meta
	}
	start := (pagina - 1) * limite
	end := min(start+limite, len(items))
	return items[start:end], meta
}
