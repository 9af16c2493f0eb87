package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xrplist/warden/core"
	"github.com/xrplist/warden/service"
)

// Handlers contains the HTTP handlers for all endpoints.
type Handlers struct {
	auth     *service.AuthService
	admins   *service.AdminService
	registry *service.RegistryService
	log      *zap.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(auth *service.AuthService, admins *service.AdminService, registry *service.RegistryService, log *zap.Logger) *Handlers {
	return &Handlers{auth: auth, admins: admins, registry: registry, log: log}
}

// Challenge issues an authentication challenge for a wallet address.
func (h *Handlers) Challenge(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"wallet_address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if !service.ValidAddress(req.WalletAddress) {
		c.JSON(http.StatusBadRequest, gin.H{"error": core.ErrInvalidAddress.Error()})
		return
	}

	challenge, err := h.auth.IssueChallenge(c.Request.Context(), req.WalletAddress)
	if err != nil {
		h.log.Error("failed to issue challenge", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create challenge"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"challenge_id": challenge.ID,
		"message":      challenge.Message,
		"expires_at":   challenge.ExpiresAt.Format(time.RFC3339),
	})
}

// Verify checks a signed challenge and returns the session assertion.
func (h *Handlers) Verify(c *gin.Context) {
	var req struct {
		ChallengeID   string `json:"challenge_id" binding:"required"`
		WalletAddress string `json:"wallet_address" binding:"required"`
		Signature     string `json:"signature" binding:"required"`
		PublicKey     string `json:"public_key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	token, expiresAt, err := h.auth.Login(c.Request.Context(), req.ChallengeID, req.WalletAddress, req.Signature, req.PublicKey)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"expires_at":   expiresAt.Format(time.RFC3339),
	})
}

type adminResponse struct {
	ID            string `json:"id"`
	WalletAddress string `json:"wallet_address"`
	Role          string `json:"role"`
	AddedBy       string `json:"added_by,omitempty"`
	CreatedAt     string `json:"created_at"`
}

func toAdminResponse(a core.AdminAccount) adminResponse {
	return adminResponse{
		ID:            a.ID,
		WalletAddress: a.Address,
		Role:          string(a.Role),
		AddedBy:       a.AddedBy,
		CreatedAt:     a.CreatedAt.Format(time.RFC3339),
	}
}

// ListAdmins returns all admin wallets (super admin only).
func (h *Handlers) ListAdmins(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Identity not found in context"})
		return
	}

	admins, err := h.admins.List(c.Request.Context(), caller)
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]adminResponse, 0, len(admins))
	for _, a := range admins {
		out = append(out, toAdminResponse(a))
	}
	c.JSON(http.StatusOK, out)
}

// AddAdmin registers a new admin wallet (super admin only).
func (h *Handlers) AddAdmin(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Identity not found in context"})
		return
	}

	var req struct {
		WalletAddress string `json:"wallet_address" binding:"required"`
		Role          string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	role, err := core.ParseRole(req.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !service.ValidAddress(req.WalletAddress) {
		h.respondError(c, core.ErrInvalidAddress)
		return
	}

	admin, err := h.admins.Add(c.Request.Context(), caller, req.WalletAddress, role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAdminResponse(*admin))
}

// RemoveAdmin deletes an admin wallet (super admin only).
func (h *Handlers) RemoveAdmin(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Identity not found in context"})
		return
	}

	if err := h.admins.Remove(c.Request.Context(), caller, c.Param("address")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Admin wallet removed successfully"})
}

type entryResponse struct {
	ID            string `json:"id"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	WalletAddress string `json:"wallet_address"`
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	StateProvince string `json:"state_province"`
	ZipPostal     string `json:"zip_postal"`
	Country       string `json:"country"`
	PhoneNumber   string `json:"phone_number,omitempty"`
	CreatedAt     string `json:"created_at"`
}

func toEntryResponse(e core.AllowlistEntry) entryResponse {
	return entryResponse{
		ID:            e.ID,
		FullName:      e.FullName,
		Email:         e.Email,
		WalletAddress: e.WalletAddress,
		StreetAddress: e.StreetAddress,
		City:          e.City,
		StateProvince: e.StateProvince,
		ZipPostal:     e.ZipPostal,
		Country:       e.Country,
		PhoneNumber:   e.PhoneNumber,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
}

// CreateEntry registers a public allow-list signup.
func (h *Handlers) CreateEntry(c *gin.Context) {
	var req struct {
		FullName      string `json:"full_name" binding:"required"`
		Email         string `json:"email" binding:"required,email"`
		WalletAddress string `json:"wallet_address" binding:"required"`
		StreetAddress string `json:"street_address" binding:"required"`
		City          string `json:"city" binding:"required"`
		StateProvince string `json:"state_province" binding:"required"`
		ZipPostal     string `json:"zip_postal" binding:"required"`
		Country       string `json:"country" binding:"required"`
		PhoneNumber   string `json:"phone_number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	entry, err := h.registry.AddEntry(c.Request.Context(), core.AllowlistEntry{
		FullName:      req.FullName,
		Email:         req.Email,
		WalletAddress: req.WalletAddress,
		StreetAddress: req.StreetAddress,
		City:          req.City,
		StateProvince: req.StateProvince,
		ZipPostal:     req.ZipPostal,
		Country:       req.Country,
		PhoneNumber:   req.PhoneNumber,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toEntryResponse(*entry))
}

// ListEntries returns all allow-list entries.
func (h *Handlers) ListEntries(c *gin.Context) {
	entries, err := h.registry.ListEntries(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	c.JSON(http.StatusOK, out)
}

// ClearEntries removes every allow-list entry.
func (h *Handlers) ClearEntries(c *gin.Context) {
	n, err := h.registry.ClearEntries(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

// DownloadJSON serves the allow-list as a JSON attachment.
func (h *Handlers) DownloadJSON(c *gin.Context) {
	doc, err := h.registry.RenderJSON(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=whitelist.json")
	c.Data(http.StatusOK, "application/json", doc)
}

// DownloadText serves the allow-list as a formatted text attachment.
func (h *Handlers) DownloadText(c *gin.Context) {
	doc, err := h.registry.RenderText(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=whitelist.txt")
	c.Data(http.StatusOK, "text/plain", []byte(doc))
}

// DownloadAddresses serves the bare wallet address list.
func (h *Handlers) DownloadAddresses(c *gin.Context) {
	doc, err := h.registry.RenderAddresses(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=wallet_addresses.txt")
	c.Data(http.StatusOK, "text/plain", []byte(doc))
}

type collectionResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Issuer    string  `json:"issuer"`
	Taxon     *uint32 `json:"taxon,omitempty"`
	CreatedAt string  `json:"created_at"`
}

func toCollectionResponse(col core.Collection) collectionResponse {
	return collectionResponse{
		ID:        col.ID,
		Name:      col.Name,
		Issuer:    col.Issuer,
		Taxon:     col.Taxon,
		CreatedAt: col.CreatedAt.Format(time.RFC3339),
	}
}

// CreateCollection registers a tracked NFT collection.
func (h *Handlers) CreateCollection(c *gin.Context) {
	var req struct {
		Name   string  `json:"name" binding:"required"`
		Issuer string  `json:"issuer" binding:"required"`
		Taxon  *uint32 `json:"taxon"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	collection, err := h.registry.AddCollection(c.Request.Context(), core.Collection{
		Name:   req.Name,
		Issuer: req.Issuer,
		Taxon:  req.Taxon,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCollectionResponse(*collection))
}

// ListCollections returns all tracked collections.
func (h *Handlers) ListCollections(c *gin.Context) {
	collections, err := h.registry.ListCollections(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	out := make([]collectionResponse, 0, len(collections))
	for _, col := range collections {
		out = append(out, toCollectionResponse(col))
	}
	c.JSON(http.StatusOK, out)
}

// DeleteCollection removes a tracked collection.
func (h *Handlers) DeleteCollection(c *gin.Context) {
	if err := h.registry.RemoveCollection(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Collection deleted successfully"})
}

// ClearCollections removes every tracked collection.
func (h *Handlers) ClearCollections(c *gin.Context) {
	n, err := h.registry.ClearCollections(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

// Healthz is the liveness probe.
func (h *Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError maps the core error taxonomy onto HTTP status codes. Every
// error below is a caller problem; anything unknown is an infrastructure
// fault and stays a 500.
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, core.ErrChallengeNotFound),
		errors.Is(err, core.ErrChallengeUsed),
		errors.Is(err, core.ErrChallengeExpired),
		errors.Is(err, core.ErrAddressMismatch),
		errors.Is(err, core.ErrInvalidKeyMaterial),
		errors.Is(err, core.ErrPublicKeyMismatch),
		errors.Is(err, core.ErrInvalidRole),
		errors.Is(err, core.ErrInvalidAddress):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrInvalidSignature):
		status = http.StatusUnauthorized
	case errors.Is(err, core.ErrNotAuthorized),
		errors.Is(err, core.ErrForbidden),
		errors.Is(err, core.ErrCannotRemoveSuperAdmin):
		status = http.StatusForbidden
	case errors.Is(err, core.ErrAdminNotFound),
		errors.Is(err, core.ErrEntryNotFound),
		errors.Is(err, core.ErrCollectionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrDuplicateAdmin),
		errors.Is(err, core.ErrDuplicateEntry):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.log.Error("request failed", zap.Error(err))
		c.JSON(status, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
