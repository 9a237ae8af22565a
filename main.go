package main

import (
	"os"

	"github.com/yeremiapane/venue-booking/utils"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		utils.ErrorLogger.Error(err)
		os.Exit(1)
	}
}
