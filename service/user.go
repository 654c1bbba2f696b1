package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"barberbot/dao"
	"barberbot/model"
	"barberbot/platform"
)

type UserService struct {
	users *dao.UserDAO
}

func NewUserService(users *dao.UserDAO) *UserService {
	return &UserService{users: users}
}

type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

func (service *UserService) Register(user *User) error {
	if service.users.Exists(user.Username, user.Email) {
		return errors.New("user already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("internal server error")
	}

	newUser := &model.User{
		Username: user.Username,
		Email:    user.Email,
		Password: string(hashedPassword),
		Phone:    user.Phone,
	}
	if err := service.users.Create(newUser); err != nil {
		return errors.New("internal server error")
	}
	return nil
}

func (service *UserService) Login(user *User) (string, error) {
	registeredUser, err := service.users.GetByUsername(user.Username)
	if err != nil {
		return "", errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(registeredUser.Password), []byte(user.Password)); err != nil {
		return "", errors.New("invalid credentials")
	}

	ts := &TokenService{}
	token, err := ts.CreateToken(registeredUser.ID, registeredUser.Username)
	if err != nil {
		platform.Logger.Warnf("error generating token for %s: %s", user.Username, err)
		return "", errors.New("failed to generate token")
	}

	return token.AccessToken, nil
}
