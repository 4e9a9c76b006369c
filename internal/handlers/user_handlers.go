package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ovenlight/bakery-api/internal/auth"
	"github.com/ovenlight/bakery-api/internal/linking"
	"github.com/ovenlight/bakery-api/internal/models"
)

//
// --- Auth / Account Handlers ---
//

// RegisterInput holds the sign-up form. Separate from models.User so a
// client can never post an id or role.
type RegisterInput struct {
	FullName    string `json:"fullName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
}

// Register is the handler for POST /v1/register
func (h *Handlers) Register(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Hash the Password ---
	var password models.Password
	if err := password.Set(input.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	// 3. --- Insert User ---
	now := time.Now()
	query := `
		INSERT INTO users
		(role, status, email, password_hash, full_name, phone_number, created_at, updated_at, version)
		VALUES ('customer', 'active', ?, ?, ?, ?, ?, ?, 1)`

	result, err := h.DB.Exec(query, input.Email, password.Hash, input.FullName, input.PhoneNumber, now, now)
	if err != nil {
		// The email column is UNIQUE; a duplicate insert lands here.
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
		return
	}
	userID, err := result.LastInsertId()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get new user ID"})
		return
	}

	// 4. --- Link Guest Records ---
	// Orders and custom requests placed before sign-up, matched by contact
	// info. Best-effort: the linker logs its own failures.
	linked := h.Linker.LinkAccount(userID, input.Email, input.PhoneNumber)

	// 5. --- Issue Token ---
	token, err := auth.GenerateToken(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"token":   token,
		"linked":  linked,
	})
}

// LoginInput defines the JSON input for login.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login is the handler for POST /v1/login
func (h *Handlers) Login(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Fetch User ---
	var user models.User
	query := `
		SELECT id, email, password_hash, full_name, phone_number, status
		FROM users
		WHERE email = ?`
	err := h.DB.QueryRow(query, input.Email).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.PhoneNumber, &user.Status,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch account"})
		return
	}

	// 3. --- Check Password ---
	password := models.Password{Hash: user.PasswordHash}
	matches, err := password.Matches(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify password"})
		return
	}
	if !matches {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if user.Status != "active" {
		c.JSON(http.StatusForbidden, gin.H{"error": "This account is disabled"})
		return
	}

	// 4. --- Link Guest Records ---
	linked := h.Linker.LinkAccount(user.ID, user.Email, user.PhoneNumber)

	// 5. --- Issue Token ---
	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"linked": linked,
		"user": gin.H{
			"id":       user.ID,
			"email":    user.Email,
			"fullName": user.FullName,
		},
	})
}

// GetMe is the handler for GET /v1/profile/me
func (h *Handlers) GetMe(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	var user models.User
	query := `
		SELECT id, role, status, email, full_name, phone_number, created_at, updated_at
		FROM users
		WHERE id = ?`
	err := h.DB.QueryRow(query, userID).Scan(
		&user.ID, &user.Role, &user.Status, &user.Email,
		&user.FullName, &user.PhoneNumber, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch account"})
		return
	}

	// Role flags come from the side tables.
	var isAdmin, isSuperAdmin bool
	_ = h.DB.QueryRow("SELECT EXISTS(SELECT 1 FROM admins WHERE user_id = ?)", userID).Scan(&isAdmin)
	_ = h.DB.QueryRow("SELECT EXISTS(SELECT 1 FROM super_admins WHERE user_id = ?)", userID).Scan(&isSuperAdmin)

	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"isAdmin":      isAdmin || isSuperAdmin,
		"isSuperAdmin": isSuperAdmin,
	})
}

// ClaimInput defines the JSON for claiming a guest record.
type ClaimInput struct {
	Reference string `json:"reference" binding:"required"`
}

// ClaimRecord is the handler for POST /v1/claims
// It links a single guest order or custom request, found by reference code
// or raw id, to the signed-in account.
func (h *Handlers) ClaimRecord(c *gin.Context) {
	// 1. --- Get User ID & Bind Input ---
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	var input ClaimInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Run the Linker ---
	rec, err := h.Linker.Claim(userID, input.Reference)
	if err != nil {
		if errors.Is(err, linking.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No order or custom request matches that reference"})
			return
		}
		if errors.Is(err, linking.ErrOwnedByOther) {
			c.JSON(http.StatusConflict, gin.H{"error": "This record is already linked to a different account"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to claim record"})
		return
	}

	// 3. --- Send Success Response ---
	c.JSON(http.StatusOK, gin.H{
		"message":       "Record linked to your account",
		"collection":    rec.Collection,
		"referenceCode": rec.ReferenceCode,
	})
}
