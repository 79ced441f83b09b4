package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/stockmanager/backend/internal/auth"
	"github.com/stockmanager/backend/internal/models"
	"github.com/stockmanager/backend/internal/repo"
)

// LoginHandler godoc
// @Summary Authenticate and return JWT plus refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body CredentialsRequest true "email and password"
// @Success 200 {object} LoginResult
// @Failure 400 {string} string "Invalid input"
// @Failure 401 {string} string "Unauthorized"
// @Router /auth/login [post]
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var credentials CredentialsRequest
	if err := readJSON(w, r, &credentials); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	user, err := userRepo.GetByEmail(credentials.Email)
	if err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credentials.Password)) != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := auth.GenerateToken(user)
	if err != nil {
		http.Error(w, "could not generate token", http.StatusInternalServerError)
		return
	}

	refreshToken, err := auth.NewRefreshToken()
	if err != nil {
		http.Error(w, "could not generate refresh token", http.StatusInternalServerError)
		return
	}
	if err := refreshStore.Set(r.Context(), refreshToken, user.Email); err != nil {
		log.Error().Err(err).Msg("failed to store refresh token")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	user.PasswordHash = ""
	writeJSON(w, http.StatusOK, LoginResult{
		Token:        token,
		RefreshToken: refreshToken,
		User:         user,
	})
}

// RefreshHandler godoc
// @Summary Exchange a refresh token for a new JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param refresh body RefreshRequest true "refresh token"
// @Success 200 {object} RefreshResult
// @Failure 401 {string} string "Unauthorized"
// @Router /auth/refresh [post]
func RefreshHandler(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := readJSON(w, r, &req); err != nil || req.RefreshToken == "" {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	email, err := refreshStore.Get(r.Context(), req.RefreshToken)
	if err != nil {
		http.Error(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}

	user, err := userRepo.GetByEmail(email)
	if err != nil {
		http.Error(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}

	token, err := auth.GenerateToken(user)
	if err != nil {
		http.Error(w, "could not generate token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, RefreshResult{Token: token})
}

// LogoutHandler godoc
// @Summary Invalidate a refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param refresh body RefreshRequest true "refresh token"
// @Success 200 {object} map[string]string
// @Router /auth/logout [post]
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := readJSON(w, r, &req); err == nil && req.RefreshToken != "" {
		_ = refreshStore.Delete(r.Context(), req.RefreshToken)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// RegisterHandler godoc
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param account body EmployeeRequest true "name, email and password"
// @Success 201 {object} models.User
// @Failure 400 {string} string "Invalid input or email in use"
// @Router /auth/register [post]
func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req EmployeeRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "missing required fields", http.StatusBadRequest)
		return
	}
	if len(req.Password) < 6 {
		http.Error(w, "password too short", http.StatusBadRequest)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	// Self-registered accounts always start as staff; any requested
	// role is ignored. Admins promote accounts via the employee routes.
	user, err := userRepo.CreateUser(models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashed),
		Role:         models.RoleStaff,
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicatedValueUnique) {
			http.Error(w, "email already in use", http.StatusBadRequest)
			return
		}
		http.Error(w, "failed to register", http.StatusInternalServerError)
		return
	}

	user.PasswordHash = ""
	writeJSON(w, http.StatusCreated, user)
}

// MeHandler godoc
// @Summary Return the authenticated account
// @Tags auth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {string} string "Unauthorized"
// @Router /auth/me [get]
// @Security BearerAuth
func MeHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r)
	if err != nil || userID == 0 {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	user, err := userRepo.GetByID(userID)
	if err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	user.PasswordHash = ""
	writeJSON(w, http.StatusOK, user)
}

// CreateEmployeeHandler godoc
// @Summary Create an employee account
// @Tags employees
// @Accept json
// @Produce json
// @Param employee body EmployeeRequest true "employee to create"
// @Success 201 {object} models.User
// @Failure 400 {string} string "Invalid input"
// @Failure 403 {string} string "Forbidden"
// @Failure 409 {string} string "Email in use"
// @Router /auth/employees [post]
// @Security BearerAuth
func CreateEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	var req EmployeeRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "missing required fields", http.StatusBadRequest)
		return
	}
	if len(req.Password) < 6 {
		http.Error(w, "password too short", http.StatusBadRequest)
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleEmployee
	}
	if role != models.RoleEmployee && role != models.RoleStaff {
		http.Error(w, "invalid role", http.StatusBadRequest)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	user, err := userRepo.CreateUser(models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashed),
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicatedValueUnique) {
			http.Error(w, "email already in use", http.StatusConflict)
			return
		}
		http.Error(w, "failed to create employee", http.StatusInternalServerError)
		return
	}

	user.PasswordHash = ""
	writeJSON(w, http.StatusCreated, user)
}

// GetEmployeesHandler godoc
// @Summary List employee accounts
// @Tags employees
// @Produce json
// @Success 200 {array} models.User
// @Failure 403 {string} string "Forbidden"
// @Router /auth/employees [get]
// @Security BearerAuth
func GetEmployeesHandler(w http.ResponseWriter, r *http.Request) {
	employees, err := userRepo.GetEmployees()
	if err != nil {
		http.Error(w, "failed to list employees", http.StatusInternalServerError)
		return
	}
	if employees == nil {
		employees = []models.User{}
	}
	writeJSON(w, http.StatusOK, employees)
}

// UpdateEmployeeHandler godoc
// @Summary Update an employee account
// @Tags employees
// @Accept json
// @Produce json
// @Param id path int true "Employee ID"
// @Param employee body EmployeeRequest true "fields to update"
// @Success 200 {object} map[string]string
// @Failure 400 {string} string "Invalid input"
// @Failure 404 {string} string "Not found"
// @Failure 409 {string} string "Email in use"
// @Router /auth/employees/{id} [put]
// @Security BearerAuth
func UpdateEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid employee ID", http.StatusBadRequest)
		return
	}

	var req EmployeeRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	existing, err := userRepo.GetByID(id)
	if err != nil {
		http.Error(w, "employee not found", http.StatusNotFound)
		return
	}

	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.Email != "" && req.Email != existing.Email {
		inUse, err := userRepo.EmailInUse(req.Email, id)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if inUse {
			http.Error(w, "email already in use", http.StatusConflict)
			return
		}
		existing.Email = req.Email
	}
	if req.Role != "" {
		existing.Role = req.Role
	}

	updatePassword := false
	if req.Password != "" {
		if len(req.Password) < 6 {
			http.Error(w, "password too short", http.StatusBadRequest)
			return
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			http.Error(w, "failed to hash password", http.StatusInternalServerError)
			return
		}
		existing.PasswordHash = string(hashed)
		updatePassword = true
	}

	if err := userRepo.UpdateUser(existing, updatePassword); err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			http.Error(w, "employee not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to update employee", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "employee updated"})
}

// DeleteEmployeeHandler godoc
// @Summary Delete an employee account
// @Tags employees
// @Param id path int true "Employee ID"
// @Success 204
// @Failure 404 {string} string "Not found"
// @Router /auth/employees/{id} [delete]
// @Security BearerAuth
func DeleteEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid employee ID", http.StatusBadRequest)
		return
	}

	if err := userRepo.DeleteUser(id); err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			http.Error(w, "employee not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to delete employee", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
