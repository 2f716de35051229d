package handlers

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vaughan-dsouza/cloudportal/internal/cloudstack"
	"github.com/vaughan-dsouza/cloudportal/internal/utils"
)

type CloudStackHandler struct {
	client cloudstack.Client
	log    logrus.FieldLogger
}

func NewCloudStackHandler(client cloudstack.Client, log logrus.FieldLogger) *CloudStackHandler {
	return &CloudStackHandler{client: client, log: log}
}

func (h *CloudStackHandler) VirtualMachines(w http.ResponseWriter, r *http.Request) {
	list(w, r, h.log, h.client.ListVirtualMachines)
}

func (h *CloudStackHandler) Volumes(w http.ResponseWriter, r *http.Request) {
	list(w, r, h.log, h.client.ListVolumes)
}

func (h *CloudStackHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	list(w, r, h.log, h.client.ListAccounts)
}

func (h *CloudStackHandler) Zones(w http.ResponseWriter, r *http.Request) {
	list(w, r, h.log, h.client.ListZones)
}

func list[T any](w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, fetch func(context.Context) ([]T, error)) {
	items, err := fetch(r.Context())
	if err != nil {
		writeError(w, r, log, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	utils.OK(w, http.StatusOK, items)
}
