package restapi

import (
	"fmt"
	"net/http"

	"aave_alarm/internal/app/port"
	"aave_alarm/internal/domain/entity"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type addAccountRequest struct {
	Chain       string `json:"chain"`
	Address     string `json:"address"`
	AaveVersion int    `json:"aaveVersion"`
}

type thresholdRequest struct {
	Threshold *float64 `json:"threshold"`
}

type deviceTokenRequest struct {
	DeviceToken string `json:"deviceToken"`
}

// AccountHandler serves tracked accounts and user settings.
type AccountHandler struct {
	accounts port.AccountStore
	session  port.UserSession
	logger   *zap.Logger
}

func NewAccountHandler(accounts port.AccountStore, session port.UserSession, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, session: session, logger: logger.Named("AccountHandler")}
}

func (h *AccountHandler) ListAccountsHandler(c *gin.Context) {
	userID, ok := resolveUserID(c, h.session)
	if !ok {
		return
	}
	accounts, err := h.accounts.ListAccounts(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": accounts})
}

func (h *AccountHandler) AddAccountHandler(c *gin.Context) {
	userID, ok := resolveUserID(c, h.session)
	if !ok {
		return
	}
	var req addAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %w", entity.ErrInvalidAccount, err))
		return
	}
	account, err := entity.NewTrackedAccount(req.Chain, req.Address, req.AaveVersion)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.accounts.AddAccount(c.Request.Context(), userID, account); err != nil {
		writeError(c, err)
		return
	}
	h.logger.Info("Account added", zap.String("userID", userID), zap.String("account", account.Key()))
	c.JSON(http.StatusCreated, gin.H{"data": account})
}

func (h *AccountHandler) DeleteAccountHandler(c *gin.Context) {
	userID, ok := resolveUserID(c, h.session)
	if !ok {
		return
	}
	account, err := accountFromPath(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.accounts.DeleteAccount(c.Request.Context(), userID, account); err != nil {
		writeError(c, err)
		return
	}
	h.logger.Info("Account deleted", zap.String("userID", userID), zap.String("account", account.Key()))
	c.Status(http.StatusNoContent)
}

func (h *AccountHandler) GetSettingsHandler(c *gin.Context) {
	userID, ok := resolveUserID(c, h.session)
	if !ok {
		return
	}
	settings, err := h.accounts.GetSettings(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": settings})
}

func (h *AccountHandler) SetThresholdHandler(c *gin.Context) {
	userID, ok := resolveUserID(c, h.session)
	if !ok {
		return
	}
	var req thresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Threshold == nil {
		writeError(c, fmt.Errorf("%w: body must be {\"threshold\": number}", entity.ErrInvalidSettings))
		return
	}
	if err := h.accounts.SetThreshold(c.Request.Context(), userID, *req.Threshold); err != nil {
		writeError(c, err)
		return
	}
	h.GetSettingsHandler(c)
}

func (h *AccountHandler) SetDeviceTokenHandler(c *gin.Context) {
	userID, ok := resolveUserID(c, h.session)
	if !ok {
		return
	}
	var req deviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %w", entity.ErrInvalidSettings, err))
		return
	}
	if err := h.accounts.SetDeviceToken(c.Request.Context(), userID, req.DeviceToken); err != nil {
		writeError(c, err)
		return
	}
	h.GetSettingsHandler(c)
}
