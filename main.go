package main

//go:generate swag init

import (
	"github.com/satheeshds/invoicer/cmd"
	_ "github.com/satheeshds/invoicer/docs"
)

// @title           Invoicer API
// @version         1.0.0
// @description     API for issuing invoices, managing the product catalog and user accounts.
// @host            localhost:3000
// @BasePath        /api/v1
// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-KEY
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization

func main() {
	cmd.Execute()
}
