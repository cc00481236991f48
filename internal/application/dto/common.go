package dto

// DefaultPageLimit filas por página de la bandeja cuando no se indica limit.
const DefaultPageLimit = 20

// PageRequest limit/offset de un listado; se valida después de DefaultPage.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage completa limit ausente; un offset negativo se corrige a cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit == 0 {
		p.Limit = DefaultPageLimit
	}
	p.Offset = max(p.Offset, 0)
}

// PageResponse página devuelta junto al total de filas que cumplen el filtro.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// ErrorResponse cuerpo de todo error HTTP. Code es estable; Message es para humanos.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}
