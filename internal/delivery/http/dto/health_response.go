package dto

type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	WSClients int               `json:"wsClients"`
}
