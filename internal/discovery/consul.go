package discovery

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	consulapi "github.com/hashicorp/consul/api"
	"github.com/sirupsen/logrus"
)

// GRPCSuffix is appended to the service name for the gRPC registration.
const GRPCSuffix = "-grpc"

const (
	checkInterval   = "10s"
	checkTimeout    = "2s"
	deregisterAfter = "1m"
)

func NewClient(addr string) (*consulapi.Client, error) {
	cfg := consulapi.DefaultConfig()
	if addr != "" {
		cfg.Address = addr
	}
	client, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client for %s: %w", cfg.Address, err)
	}
	return client, nil
}

// ParsePort accepts a listen address such as ":8080" or "0.0.0.0:8080".
func ParsePort(listen string) (int, error) {
	portStr := listen
	if strings.Contains(listen, ":") {
		_, p, err := net.SplitHostPort(listen)
		if err != nil {
			return 0, fmt.Errorf("invalid listen address %q: %w", listen, err)
		}
		portStr = p
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("invalid port in listen address %q", listen)
	}
	return port, nil
}

func instanceID(name, address string, port int) string {
	return fmt.Sprintf("%s-%s-%d", name, address, port)
}

// HTTPRegistration describes the HTTP API with a check against /health.
func HTTPRegistration(name, address string, port int) *consulapi.AgentServiceRegistration {
	return &consulapi.AgentServiceRegistration{
		ID:      instanceID(name, address, port),
		Name:    name,
		Address: address,
		Port:    port,
		Tags:    []string{"http", "api"},
		Check: &consulapi.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s/health", net.JoinHostPort(address, strconv.Itoa(port))),
			Interval:                       checkInterval,
			Timeout:                        checkTimeout,
			DeregisterCriticalServiceAfter: deregisterAfter,
		},
	}
}

// GRPCRegistration describes the internal CartService with a gRPC health check.
func GRPCRegistration(name, address string, port int, grpcService string) *consulapi.AgentServiceRegistration {
	grpcName := name + GRPCSuffix
	return &consulapi.AgentServiceRegistration{
		ID:      instanceID(grpcName, address, port),
		Name:    grpcName,
		Address: address,
		Port:    port,
		Tags:    []string{"grpc", "internal"},
		Check: &consulapi.AgentServiceCheck{
			GRPC:                           net.JoinHostPort(address, strconv.Itoa(port)) + "/" + grpcService,
			Interval:                       checkInterval,
			Timeout:                        checkTimeout,
			DeregisterCriticalServiceAfter: deregisterAfter,
		},
	}
}

// Registrar keeps track of what it registered so shutdown can undo it.
type Registrar struct {
	client *consulapi.Client
	ids    []string
	log    *logrus.Logger
}

func NewRegistrar(client *consulapi.Client, logger *logrus.Logger) *Registrar {
	return &Registrar{client: client, log: logger}
}

func (r *Registrar) Register(reg *consulapi.AgentServiceRegistration) error {
	if err := r.client.Agent().ServiceRegister(reg); err != nil {
		r.log.Errorf("Discovery: Failed to register %s: %v", reg.ID, err)
		return fmt.Errorf("failed to register service %s: %w", reg.ID, err)
	}
	r.ids = append(r.ids, reg.ID)
	r.log.Infof("Discovery: Registered %s at %s:%d", reg.Name, reg.Address, reg.Port)
	return nil
}

// DeregisterAll removes every registration in reverse order and reports the
// first failure.
func (r *Registrar) DeregisterAll() error {
	var firstErr error
	for i := len(r.ids) - 1; i >= 0; i-- {
		id := r.ids[i]
		if err := r.client.Agent().ServiceDeregister(id); err != nil {
			r.log.Warnf("Discovery: Failed to deregister %s: %v", id, err)
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to deregister service %s: %w", id, err)
			}
			continue
		}
		r.log.Infof("Discovery: Deregistered %s", id)
	}
	r.ids = nil
	return firstErr
}

// GetServiceAddress returns the address of the first passing instance of name.
func GetServiceAddress(client *consulapi.Client, name string) (string, int, error) {
	q := &consulapi.QueryOptions{WaitTime: 3 * time.Second}
	entries, _, err := client.Health().Service(name, "", true, q)
	if err != nil {
		return "", 0, fmt.Errorf("failed to query consul for %s: %w", name, err)
	}
	if len(entries) == 0 {
		return "", 0, fmt.Errorf("no healthy instance of %s registered", name)
	}
	entry := entries[0]
	address := entry.Service.Address
	if address == "" && entry.Node != nil {
		address = entry.Node.Address
	}
	return address, entry.Service.Port, nil
}
