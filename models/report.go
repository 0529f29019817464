package models

// Report is the dispatcher dashboard summary.
type Report struct {
	KPIs struct {
		OrdersThisMonth int     `json:"total_mes"`
		SuccessRate     float64 `json:"tasa_exito"`
		ActiveDrivers   int     `json:"conductores_activos"`
		TotalDrivers    int     `json:"conductores_totales"`
		Incidents       int     `json:"incidencias"`
	} `json:"kpis"`
	Daily struct {
		Labels []string `json:"labels"`
		Data   []int    `json:"data"`
	} `json:"grafico_dias"`
	ByStatus struct {
		Pending        int `json:"pendientes"`
		EnRoute        int `json:"en_camino"`
		DeliveredToday int `json:"entregados_hoy"`
	} `json:"grafico_estados"`
	TopDrivers []struct {
		Name       string `json:"nombre"`
		Deliveries int    `json:"entregas"`
	} `json:"top_conductores"`
	TopProducts []struct {
		Name string `json:"producto__nombre"`
		Sold int    `json:"total_vendido"`
	} `json:"top_productos"`
}
