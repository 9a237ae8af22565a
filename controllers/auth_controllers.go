package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/venue-booking/database"
	"github.com/yeremiapane/venue-booking/middlewares"
	"github.com/yeremiapane/venue-booking/models"
	"github.com/yeremiapane/venue-booking/session"
	"github.com/yeremiapane/venue-booking/store"
	"github.com/yeremiapane/venue-booking/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	DB       *gorm.DB
	Sessions *session.Manager
}

func NewAuthController(db *gorm.DB, sessions *session.Manager) *AuthController {
	return &AuthController{DB: db, Sessions: sessions}
}

// emailLocalPart is the default full name of a new profile.
func emailLocalPart(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}

// Register user baru beserta profile (is_admin=false)
func (ac *AuthController) Register(c *gin.Context) {
	type request struct {
		Name     string `json:"name"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Hash password
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = emailLocalPart(email)
	}
	user := models.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
	}

	err = ac.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errEmailTaken
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&models.Profile{
			ID:       user.ID,
			FullName: emailLocalPart(email),
		}).Error
	})
	if errors.Is(err, errEmailTaken) {
		utils.RespondError(c, http.StatusConflict, err)
		return
	}
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New user registered: %s", user.Email)

	utils.RespondJSON(c, http.StatusCreated, "User registered", gin.H{
		"user_id": user.ID,
	})
}

var errEmailTaken = errors.New("email already registered")

// profile yang hilang berarti mode guest
func (ac *AuthController) profile(ctx context.Context, userID uint) (models.Profile, error) {
	p, err := database.NewRepository(ac.DB).Profile(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Profile{ID: userID}, nil
	}
	if err != nil {
		return models.Profile{}, err
	}
	return *p, nil
}

// Login user -> return JWT dan mulai session store
func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	ctx := c.Request.Context()

	var user models.User
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := ac.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	profile, err := ac.profile(ctx, user.ID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, profile.IsAdmin)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	claims, err := utils.ParseToken(token)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	identity := store.Identity{UserID: user.ID, Email: user.Email, IsAdmin: profile.IsAdmin}
	ac.Sessions.Start(ctx, claims.ID, identity, claims.Expiry())

	utils.InfoLogger.Printf("Login successful for user: %s, mode: %s", user.Email, identity.Mode())

	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"mode":  identity.Mode(),
	})
}

// Logout -> blacklist token dan buang session store
func (ac *AuthController) Logout(c *gin.Context) {
	token := c.GetString(middlewares.ContextToken)
	sessionID := c.GetString(middlewares.ContextSessionID)

	utils.BlacklistToken(token)
	ac.Sessions.End(sessionID)

	utils.RespondJSON(c, http.StatusOK, "Logout successful", nil)
}

// Me -> identitas, mode dan meja yang sedang dipegang user
func (ac *AuthController) Me(c *gin.Context) {
	identity, ok := middlewares.CurrentIdentity(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, store.ErrNotAuthenticated)
		return
	}

	profile, err := ac.profile(c.Request.Context(), identity.UserID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	data := gin.H{
		"user_id":   identity.UserID,
		"email":     identity.Email,
		"full_name": profile.FullName,
		"mode":      identity.Mode(),
	}
	if st, ok := middlewares.CurrentStore(c); ok {
		data["selected_date"] = st.SelectedDate()
		if tableID, ok := st.CurrentUserBooking(); ok {
			data["current_table_id"] = tableID
		}
	}
	utils.RespondJSON(c, http.StatusOK, "Profile fetched", data)
}
