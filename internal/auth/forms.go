package auth

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jellydator/validation"
)

type loginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func bindLoginForm(c *gin.Context) loginForm {
	return loginForm{
		Email:    strings.TrimSpace(c.PostForm("email")),
		Password: c.PostForm("password"),
	}
}

func (f loginForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Email, validation.Required.Error("Email is required.")),
		validation.Field(&f.Password, validation.Required.Error("Password is required.")),
	)
}

// signupForm は role を持ちません。クライアントが送ってきても読みません。
type signupForm struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func bindSignupForm(c *gin.Context) signupForm {
	return signupForm{
		Username: strings.TrimSpace(c.PostForm("username")),
		Email:    strings.TrimSpace(c.PostForm("email")),
		Password: c.PostForm("password"),
	}
}

func (f signupForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Username, validation.Required.Error("Username is required.")),
		validation.Field(&f.Email, validation.Required.Error("Email is required.")),
		validation.Field(&f.Password, validation.Required.Error("Password is required.")),
	)
}

// fieldErrors は validation.Errors をフィールド名とメッセージの対応に変換します。
func fieldErrors(err error) map[string]string {
	out := map[string]string{}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, e := range verrs {
			out[field] = e.Error()
		}
		return out
	}
	if err != nil {
		out["form"] = err.Error()
	}
	return out
}
