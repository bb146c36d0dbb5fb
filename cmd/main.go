package main

import (
	"github.com/avencatt/storefront/internal/app"
	"github.com/avencatt/storefront/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
