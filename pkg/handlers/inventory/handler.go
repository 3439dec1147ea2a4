package inventory

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/de-tools/fleet-atlas/pkg/adapters"
	"github.com/de-tools/fleet-atlas/pkg/models/api"
	"github.com/de-tools/fleet-atlas/pkg/models/domain"
	"github.com/de-tools/fleet-atlas/pkg/services/history"
	"github.com/de-tools/fleet-atlas/pkg/services/inventory"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Inventory is the read and trigger surface of the refresh service.
type Inventory interface {
	View() inventory.View
	Refresh(ctx context.Context) bool
	History(ctx context.Context) ([]domain.Summary, error)
}

type Handler struct {
	inventory Inventory
}

func NewHandler(inv Inventory) *Handler {
	return &Handler{
		inventory: inv,
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to encode response")
	}
}

func writeText(w http.ResponseWriter, r *http.Request, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(body)); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to write response")
	}
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	view := h.inventory.View()
	state := view.State()

	var lastAttempt *time.Time
	if !state.LastAttempt.IsZero() {
		lastAttempt = &state.LastAttempt
	}

	writeJSON(w, r, http.StatusOK, api.Status{
		Status:           state.Status.String(),
		CycleID:          state.CycleID,
		LastRefresh:      view.LastRefresh(),
		LastAttempt:      lastAttempt,
		RefreshAvailable: view.RefreshAvailable(),
		InError:          view.InError(),
		Error:            view.ErrorMessage(),
	})
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if !h.inventory.Refresh(r.Context()) {
		writeJSON(w, r, http.StatusConflict, api.RefreshResponse{
			Started: false,
			Message: "refresh already in progress",
		})
		return
	}
	writeJSON(w, r, http.StatusAccepted, api.RefreshResponse{
		Started: true,
		Message: "refresh started",
	})
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	view := h.inventory.View()
	snapshot := view.Snapshot()

	writeJSON(w, r, http.StatusOK, api.Summary{
		LastRefresh:       view.LastRefresh(),
		InstanceCount:     view.InstanceCount(),
		RunningCount:      view.RunningCount(),
		InVPCCount:        view.InVPCCount(),
		ReservedCount:     view.ReservedCount(),
		UnmatchedCount:    view.UnmatchedCount(),
		InstancePct:       view.InstancePct(),
		RunningPct:        view.RunningPct(),
		InVPCPct:          view.InVPCPct(),
		ReservedPct:       view.ReservedPct(),
		UnmatchedPct:      view.UnmatchedPct(),
		LoadBalancerCount: len(snapshot.LoadBalancers),
		DatabaseCount:     len(snapshot.Databases),
		VolumeCount:       len(snapshot.Volumes),
		CacheCount:        len(snapshot.Caches),
		DomainRecordCount: len(snapshot.DomainRecords),
		TotalCostPerHour:  view.FormattedCost(),
	})
}

func (h *Handler) ListInstances(w http.ResponseWriter, r *http.Request) {
	units := h.inventory.View().Units()
	writeJSON(w, r, http.StatusOK, adapters.MapSlice(units, adapters.MapRunningUnitDomainToApi))
}

func (h *Handler) ListReservations(w http.ResponseWriter, r *http.Request) {
	view := h.inventory.View()

	var reservations []*domain.ReservedCapacity
	switch state := r.URL.Query().Get("state"); state {
	case "":
		reservations = view.Reservations()
	case "matched":
		reservations = view.MatchedReservations()
	case "unmatched":
		reservations = view.UnmatchedReservations()
	default:
		http.Error(w, "state must be matched or unmatched", http.StatusBadRequest)
		return
	}

	writeJSON(w, r, http.StatusOK, adapters.MapSlice(reservations, adapters.MapReservationDomainToApi))
}

func (h *Handler) ListLoadBalancers(w http.ResponseWriter, r *http.Request) {
	lbs := h.inventory.View().Snapshot().LoadBalancers
	writeJSON(w, r, http.StatusOK, adapters.MapSlice(lbs, adapters.MapLoadBalancerDomainToApi))
}

// GetLoadBalancerInstances lists host:port targets, one per line.
func (h *Handler) GetLoadBalancerInstances(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	lines, ok := h.inventory.View().InstancesForLoadBalancer(name)
	if !ok {
		http.Error(w, "load balancer not found", http.StatusNotFound)
		return
	}

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	writeText(w, r, b.String())
}

func (h *Handler) ListDatabases(w http.ResponseWriter, r *http.Request) {
	dbs := h.inventory.View().Snapshot().Databases
	writeJSON(w, r, http.StatusOK, adapters.MapSlice(dbs, adapters.MapDatabaseDomainToApi))
}

func (h *Handler) ListVolumes(w http.ResponseWriter, r *http.Request) {
	volumes := h.inventory.View().Snapshot().Volumes
	writeJSON(w, r, http.StatusOK, adapters.MapSlice(volumes, adapters.MapVolumeDomainToApi))
}

func (h *Handler) ListCaches(w http.ResponseWriter, r *http.Request) {
	caches := h.inventory.View().Snapshot().Caches
	writeJSON(w, r, http.StatusOK, adapters.MapSlice(caches, adapters.MapCacheDomainToApi))
}

func (h *Handler) ListSubnets(w http.ResponseWriter, r *http.Request) {
	subnets := h.inventory.View().Snapshot().Subnets
	writeJSON(w, r, http.StatusOK, adapters.MapSlice(subnets, adapters.MapSubnetDomainToApi))
}

func (h *Handler) ListDomainRecords(w http.ResponseWriter, r *http.Request) {
	records := h.inventory.View().Snapshot().DomainRecords
	writeJSON(w, r, http.StatusOK, adapters.MapSlice(records, adapters.MapDomainRecordDomainToApi))
}

func (h *Handler) ListSpotRequests(w http.ResponseWriter, r *http.Request) {
	spots := h.inventory.View().Snapshot().SpotRequests
	writeJSON(w, r, http.StatusOK, adapters.MapSlice(spots, adapters.MapSpotRequestDomainToApi))
}

func (h *Handler) ListStacks(w http.ResponseWriter, r *http.Request) {
	stacks := h.inventory.View().Snapshot().Stacks
	writeJSON(w, r, http.StatusOK, adapters.MapSlice(stacks, adapters.MapStackDomainToApi))
}

func (h *Handler) ListAdvisories(w http.ResponseWriter, r *http.Request) {
	advisories := h.inventory.View().Snapshot().Advisories
	writeJSON(w, r, http.StatusOK, adapters.MapSlice(advisories, adapters.MapAdvisorResultDomainToApi))
}

func (h *Handler) ListSpend(w http.ResponseWriter, r *http.Request) {
	spend := h.inventory.View().Snapshot().Spend
	writeJSON(w, r, http.StatusOK, adapters.MapSlice(spend, adapters.MapAccountSpendDomainToApi))
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	summaries, err := h.inventory.History(ctx)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to load history")
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	if err := history.WriteCSV(w, summaries); err != nil {
		logger.Error().
			Err(err).
			Msg("failed to write history")
	}
}

func (h *Handler) GetSSHConfig(w http.ResponseWriter, r *http.Request) {
	account := r.URL.Query().Get("account")

	config, err := h.inventory.View().SSHConfig(account)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Str("account", account).
			Msg("failed to render ssh config")
		http.Error(w, "failed to render ssh config", http.StatusInternalServerError)
		return
	}
	writeText(w, r, config)
}
