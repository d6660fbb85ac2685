package kommo

type CreateLeadInput struct {
	Name       string
	Phone      string // só dígitos, ex: "5511912345678"
	Email      string
	Role       string
	RoleLabel  string // nome exibido da área, vindo da campanha
	Score      *int
	Challenges string
	Question   string
	Origin     string
}

type ContactResponse struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
