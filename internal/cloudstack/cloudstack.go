// Package cloudstack defines the CloudStack resources the portal proxies
// and the client interface the handlers read them through.
package cloudstack

import "context"

type VirtualMachine struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayname,omitempty"`
	State       string `json:"state"`
	Account     string `json:"account,omitempty"`
	ZoneID      string `json:"zoneid,omitempty"`
	ZoneName    string `json:"zonename,omitempty"`
	CPUNumber   int    `json:"cpunumber,omitempty"`
	Memory      int    `json:"memory,omitempty"`
}

type Volume struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	Size             int64  `json:"size"`
	State            string `json:"state"`
	VirtualMachineID string `json:"virtualmachineid,omitempty"`
	ZoneID           string `json:"zoneid,omitempty"`
}

type Account struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccountType int    `json:"accounttype"`
	Domain      string `json:"domain,omitempty"`
	State       string `json:"state"`
}

type Zone struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	NetworkType     string `json:"networktype,omitempty"`
	AllocationState string `json:"allocationstate,omitempty"`
}

type Client interface {
	ListVirtualMachines(ctx context.Context) ([]VirtualMachine, error)
	ListVolumes(ctx context.Context) ([]Volume, error)
	ListAccounts(ctx context.Context) ([]Account, error)
	ListZones(ctx context.Context) ([]Zone, error)
}

// PlaceholderClient answers every listing with an empty result. It stands
// in until the portal is connected to a management server.
type PlaceholderClient struct{}

func (PlaceholderClient) ListVirtualMachines(context.Context) ([]VirtualMachine, error) {
	return []VirtualMachine{}, nil
}

func (PlaceholderClient) ListVolumes(context.Context) ([]Volume, error) {
	return []Volume{}, nil
}

func (PlaceholderClient) ListAccounts(context.Context) ([]Account, error) {
	return []Account{}, nil
}

func (PlaceholderClient) ListZones(context.Context) ([]Zone, error) {
	return []Zone{}, nil
}
