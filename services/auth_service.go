package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"agroterms/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	db        *gorm.DB
	jwtSecret []byte
	expire    time.Duration
	activity  *ActivityService
}

func NewAuthService(db *gorm.DB, jwtSecret string, expire time.Duration, activity *ActivityService) *AuthService {
	return &AuthService{db: db, jwtSecret: []byte(jwtSecret), expire: expire, activity: activity}
}

type Claims struct {
	AdminID  uint   `json:"admin_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	Admin models.Admin `json:"admin"`
}

// EnsureDefaultAdmin seeds the first admin account when none exists.
func (s *AuthService) EnsureDefaultAdmin(ctx context.Context, username, password string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Admin{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := models.Admin{Username: username, Password: string(hash), Role: "admin"}
	if err := s.db.WithContext(ctx).Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("Default admin %q created", username)
	return nil
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest, ip string) (*LoginResponse, error) {
	var admin models.Admin
	if err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(req.Username)).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&admin).Update("last_login", now).Error; err != nil {
		log.Printf("Error updating last login for %s: %v", admin.Username, err)
	}
	admin.LastLogin = &now

	token, err := s.GenerateToken(&admin)
	if err != nil {
		return nil, err
	}

	if s.activity != nil {
		s.activity.Log(ctx, ActivityEntry{
			Action:     "admin_login",
			EntityType: "admin",
			EntityID:   fmt.Sprint(admin.ID),
			User:       admin.Username,
			IPAddress:  ip,
		})
	}
	return &LoginResponse{Token: token, Admin: admin}, nil
}

func (s *AuthService) GenerateToken(admin *models.Admin) (string, error) {
	now := time.Now()
	claims := Claims{
		AdminID:  admin.ID,
		Username: admin.Username,
		Role:     admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expire)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

func (s *AuthService) GetAdmin(ctx context.Context, id uint) (*models.Admin, error) {
	var admin models.Admin
	if err := s.db.WithContext(ctx).First(&admin, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return &admin, nil
}
