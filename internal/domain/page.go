package domain

// Page представляет страницу списка в формате {items, total}
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// Normalize заменяет отсутствующий список пустым
func (p *Page[T]) Normalize() {
	if p.Items == nil {
		p.Items = []T{}
	}
	if p.Total < 0 {
		p.Total = 0
	}
}

// Health представляет ответ эндпоинта /health
type Health struct {
	Status string `json:"status"`
}

// Healthy возвращает true если API сообщает о работоспособности
func (h Health) Healthy() bool {
	return h.Status == "healthy"
}
