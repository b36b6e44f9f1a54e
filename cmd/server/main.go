package main

import "sportsregistration/cmd/server/cmd"

// @title Sports Event Registration API
// @version 1.0
// @description Admins publish sports events; users browse them and register individually or as teams.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
func main() {
	cmd.Execute()
}
