package controllers

import (
	"github.com/chenhan1218/BestBite/app"
	"github.com/chenhan1218/BestBite/inventory"
	"github.com/chenhan1218/BestBite/recognize"
)

// Srv 控制器共享的依赖
type Srv struct {
	Inventory  *inventory.Service
	Recognizer recognize.Recognizer
}

func GetSrv(a *app.App) *Srv {
	return &Srv{Inventory: a.Inventory, Recognizer: a.Recognizer}
}
