package main

import (
	"flag"

	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/application"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/config"
)

func main() {
	configPath := flag.String("config", "../.env", "path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfigs(*configPath)
	if err != nil {
		panic(err)
	}

	app := application.App{Cfg: cfg}
	app.Run()
}
