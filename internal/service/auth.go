package service

import (
	"net/http"
	"strings"

	"github.com/openboard-dev/openboard/internal/domain"
	"github.com/openboard-dev/openboard/internal/errors"
	"github.com/openboard-dev/openboard/internal/logger"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(email domain.Email, username domain.Username, password domain.Password) (domain.User, string, error)
	Login(creds domain.Credentials) (domain.User, string, error)
}

type Auth struct {
	storage AuthStorage
	jwt     Jwt
}

type AuthStorage interface {
	SaveUser(user domain.User) (domain.UserId, error)
	User(email domain.Email) (domain.User, error)
	UserByUsername(username domain.Username) (domain.User, error)
}

type Jwt interface {
	NewToken(user domain.User) (string, error)
}

func NewAuth(storage AuthStorage, jwt Jwt) *Auth {
	return &Auth{storage: storage, jwt: jwt}
}

// Register creates the account and logs it in immediately, returning the
// stored user and a fresh access token.
func (a *Auth) Register(email domain.Email, username domain.Username, password domain.Password) (domain.User, string, error) {
	email = strings.ToLower(email)
	username = strings.ToLower(username)

	// a taken username gets a specific message; the unique index still
	// catches the insert race
	if _, err := a.storage.UserByUsername(username); err == nil {
		return domain.User{}, "", &errors.ErrorWithStatusCode{Message: "Username already taken", StatusCode: http.StatusConflict}
	} else if !errors.IsNotFound(err) {
		return domain.User{}, "", err
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return domain.User{}, "", err
	}

	user := domain.User{Email: email, Username: username, PassHash: string(passHash)}
	id, err := a.storage.SaveUser(user)
	if err != nil {
		return domain.User{}, "", err
	}
	user.Id = id

	token, err := a.jwt.NewToken(user)
	if err != nil {
		return domain.User{}, "", err
	}
	return user, token, nil
}

// Login checks the credentials and returns the user with an access token.
// Unknown email and wrong password produce the same response, so existing
// accounts are not enumerable.
func (a *Auth) Login(creds domain.Credentials) (domain.User, string, error) {
	email := strings.ToLower(creds.Email)

	invalidCreds := &errors.ErrorWithStatusCode{Message: "Invalid credentials", StatusCode: http.StatusUnauthorized}

	user, err := a.storage.User(email)
	if err != nil {
		if errors.IsNotFound(err) {
			return domain.User{}, "", invalidCreds
		}
		return domain.User{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(creds.Password)); err != nil {
		return domain.User{}, "", invalidCreds
	}

	token, err := a.jwt.NewToken(user)
	if err != nil {
		return domain.User{}, "", err
	}
	return user, token, nil
}
