package controller

import (
	"github.com/ougirez/sidra/internal/service/auth"
	"github.com/ougirez/sidra/internal/service/catalog"
	"github.com/ougirez/sidra/internal/service/harvest"
)

type Controller struct {
	harvest *harvest.Service
	catalog *catalog.Service
	auth    *auth.Service
}

func NewController(harvest *harvest.Service, catalog *catalog.Service, auth *auth.Service) *Controller {
	return &Controller{harvest: harvest, catalog: catalog, auth: auth}
}
