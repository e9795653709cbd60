package main

import (
	_ "mis_invoicing/docs"
	"mis_invoicing/internal/adapter/http/routes"

	_ "github.com/joho/godotenv/autoload"
)

// @title           MIS Invoicing API
// @version         1.0
// @description     GST estimates, invoices and payment reconciliation backed by DynamoDB or SQL.

// @host localhost:8080

// @BasePath  /v1

func main() {
	routes.Run()
}
