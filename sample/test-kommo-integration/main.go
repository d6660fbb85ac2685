package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/integration/kommo"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Aviso: arquivo .env não encontrado, usando variáveis de ambiente do sistema")
	}

	token := os.Getenv("KOMMO_API_TOKEN")
	if token == "" {
		log.Fatal("❌ KOMMO_API_TOKEN deve estar configurado no .env")
	}
	baseURL := os.Getenv("KOMMO_BASE_URL")
	if baseURL == "" {
		baseURL = "https://liguemedicina.kommo.com/api/v4"
	}
	statusID, _ := strconv.Atoi(os.Getenv("KOMMO_STATUS_ID"))

	client := kommo.NewClient(token, baseURL, statusID)

	score := 9
	input := kommo.CreateLeadInput{
		Name:       "Joao Teste da Silva",
		Phone:      "55" + entity.PhoneDigits("(61) 99767-638"),
		Email:      "joao.teste@email.com",
		Role:       string(entity.RoleAccounting),
		Score:      &score,
		Challenges: "Entender a transição do ICMS para o IBS",
		Question:   "Como fica o crédito de PIS/Cofins?",
		Origin:     "SAMPLE",
	}

	fmt.Println("🔄 Criando lead no Kommo...")
	fmt.Printf("📋 Dados:\n")
	fmt.Printf("   Nome: %s\n", input.Name)
	fmt.Printf("   Telefone: %s\n", input.Phone)
	fmt.Printf("   Email: %s\n", input.Email)
	fmt.Printf("   Área: %s\n", input.Role)
	fmt.Printf("   NPS: %d\n", score)
	fmt.Printf("   Origem: %s\n\n", input.Origin)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	leadID, err := client.CreateLead(ctx, input)
	if err != nil {
		log.Fatalf("Erro ao criar lead no Kommo: %v", err)
	}

	accountID := os.Getenv("KOMMO_ACCOUNT_ID")
	if accountID == "" {
		accountID = "liguemedicina"
	}

	fmt.Printf("Lead criado com sucesso no Kommo! \n")
	fmt.Printf(" ID do Lead: #%d\n", leadID)
	fmt.Printf(" Link: https://%s.kommo.com/leads/detail/%d\n", accountID, leadID)
}
