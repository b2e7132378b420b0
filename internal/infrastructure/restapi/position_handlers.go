package restapi

import (
	"fmt"
	"net/http"
	"strconv"

	"aave_alarm/internal/app/port"
	"aave_alarm/internal/domain/entity"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APISnapshotsResponse is the body of GET /snapshots.
type APISnapshotsResponse struct {
	Data struct {
		Snapshots []entity.SnapshotResult `json:"snapshots"`
	} `json:"data"`
	StatusMessage string `json:"status_message"`
}

// APIHealthFactor adds the alert decision to a health factor result.
type APIHealthFactor struct {
	entity.HealthFactorResult
	BelowThreshold bool `json:"belowThreshold"`
}

// APIHealthFactorsResponse is the body of GET /health-factors.
type APIHealthFactorsResponse struct {
	Data struct {
		Threshold     float64           `json:"threshold"`
		HealthFactors []APIHealthFactor `json:"healthFactors"`
	} `json:"data"`
	StatusMessage string `json:"status_message"`
}

// APIMarket is one supported (chain, version) pair.
type APIMarket struct {
	Chain       entity.Chain       `json:"chain"`
	Name        string             `json:"name"`
	ChainID     uint64             `json:"chainId"`
	AaveVersion entity.AaveVersion `json:"aaveVersion"`
	Testnet     bool               `json:"testnet"`
}

// PositionHandler serves snapshot and market endpoints.
type PositionHandler struct {
	positions port.PositionService
	accounts  port.AccountStore
	registry  port.MarketRegistry
	session   port.UserSession
	logger    *zap.Logger
}

func NewPositionHandler(
	positions port.PositionService,
	accounts port.AccountStore,
	registry port.MarketRegistry,
	session port.UserSession,
	logger *zap.Logger,
) *PositionHandler {
	return &PositionHandler{
		positions: positions,
		accounts:  accounts,
		registry:  registry,
		session:   session,
		logger:    logger.Named("PositionHandler"),
	}
}

// accountFromPath reads :chain/:address/:version.
func accountFromPath(c *gin.Context) (entity.TrackedAccount, error) {
	version, err := strconv.Atoi(c.Param("version"))
	if err != nil {
		return entity.TrackedAccount{}, fmt.Errorf("%w: aave version %q", entity.ErrInvalidAccount, c.Param("version"))
	}
	return entity.NewTrackedAccount(c.Param("chain"), c.Param("address"), version)
}

// GetSnapshotHandler computes the snapshot of one account given in the path.
func (h *PositionHandler) GetSnapshotHandler(c *gin.Context) {
	account, err := accountFromPath(c)
	if err != nil {
		writeError(c, err)
		return
	}
	snapshot, err := h.positions.ComputeSnapshot(c.Request.Context(), account)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": snapshot})
}

// GetSnapshotsHandler computes snapshots for every account the user tracks.
func (h *PositionHandler) GetSnapshotsHandler(c *gin.Context) {
	userID, ok := resolveUserID(c, h.session)
	if !ok {
		return
	}
	accounts, err := h.accounts.ListAccounts(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	results := h.positions.ComputeSnapshots(c.Request.Context(), accounts)
	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
		}
	}

	var response APISnapshotsResponse
	response.Data.Snapshots = results
	switch {
	case len(results) == 0:
		response.StatusMessage = "No tracked accounts."
	case failed == len(results):
		response.StatusMessage = "Failed to load any account."
	case failed > 0:
		response.StatusMessage = "Snapshots retrieved. Some accounts could not be loaded."
	default:
		response.StatusMessage = "Snapshots retrieved successfully."
	}
	c.JSON(http.StatusOK, response)
}

// GetHealthFactorsHandler reads the health factor of every tracked account
// and flags the ones under the user's threshold.
func (h *PositionHandler) GetHealthFactorsHandler(c *gin.Context) {
	userID, ok := resolveUserID(c, h.session)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	accounts, err := h.accounts.ListAccounts(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	settings, err := h.accounts.GetSettings(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	var response APIHealthFactorsResponse
	response.Data.Threshold = settings.HealthFactorThreshold
	response.Data.HealthFactors = []APIHealthFactor{}
	atRisk := 0
	for _, r := range h.positions.HealthFactors(ctx, accounts) {
		below := r.Error == nil && r.HealthFactor != entity.NoLiquidationRisk && r.HealthFactor < settings.HealthFactorThreshold
		if below {
			atRisk++
		}
		response.Data.HealthFactors = append(response.Data.HealthFactors, APIHealthFactor{HealthFactorResult: r, BelowThreshold: below})
	}
	if atRisk > 0 {
		response.StatusMessage = fmt.Sprintf("%d account(s) below threshold.", atRisk)
		h.logger.Info("Accounts below threshold", zap.String("userID", userID), zap.Int("count", atRisk))
	} else {
		response.StatusMessage = "All accounts above threshold."
	}
	c.JSON(http.StatusOK, response)
}

// GetChainsHandler lists supported markets.
func (h *PositionHandler) GetChainsHandler(c *gin.Context) {
	markets := h.registry.Markets()
	out := make([]APIMarket, 0, len(markets))
	for _, m := range markets {
		def, _ := h.registry.ChainDefinition(m.Chain)
		out = append(out, APIMarket{
			Chain:       m.Chain,
			Name:        def.Name,
			ChainID:     m.ChainID,
			AaveVersion: m.Version,
			Testnet:     def.Testnet,
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}
