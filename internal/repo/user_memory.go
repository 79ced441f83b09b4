package repo

import (
	"github.com/stockmanager/backend/internal/models"
)

type InMemoryUserRepository struct {
	users  []models.User
	nextID int
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users:  []models.User{},
		nextID: 1,
	}
}

func (r *InMemoryUserRepository) CreateUser(u models.User) (models.User, error) {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return models.User{}, ErrDuplicatedValueUnique
		}
	}
	u.ID = r.nextID
	r.nextID++
	r.users = append(r.users, u)
	return u, nil
}

func (r *InMemoryUserRepository) GetByEmail(email string) (models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

func (r *InMemoryUserRepository) GetByID(id int) (models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

func (r *InMemoryUserRepository) GetEmployees() ([]models.User, error) {
	var employees []models.User
	for i := len(r.users) - 1; i >= 0; i-- {
		u := r.users[i]
		if u.Role != models.RoleAdmin {
			u.PasswordHash = ""
			employees = append(employees, u)
		}
	}
	return employees, nil
}

func (r *InMemoryUserRepository) UpdateUser(u models.User, updatePassword bool) error {
	for i, existing := range r.users {
		if existing.ID == u.ID {
			if !updatePassword {
				u.PasswordHash = existing.PasswordHash
			}
			r.users[i] = u
			return nil
		}
	}
	return ErrUserNotFound
}

func (r *InMemoryUserRepository) DeleteUser(id int) error {
	for i, u := range r.users {
		if u.ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return ErrUserNotFound
}

func (r *InMemoryUserRepository) EmailInUse(email string, excludeID int) (bool, error) {
	for _, u := range r.users {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryUserRepository) Clear() {
	r.users = []models.User{}
	r.nextID = 1
}
