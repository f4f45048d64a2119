package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"stockflow/internal/apperror"
	"stockflow/internal/model"
	"stockflow/internal/service"
	serviceMocks "stockflow/internal/service/mocks"
)

func TestProfileSettings(t *testing.T) {
	svc := new(serviceMocks.MockSettingsService)
	app := newApp(true)
	app.Get("/settings/profile", GetProfile(svc))
	app.Put("/settings/profile", UpdateProfile(svc))

	t.Run("get", func(t *testing.T) {
		svc.On("GetProfile", mock.Anything, testUserID).
			Return(&model.Profile{UserID: testUserID, CompanyName: "Acme"}, nil).Once()

		resp, _ := app.Test(newRequest(http.MethodGet, "/settings/profile", ""))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("missing profile", func(t *testing.T) {
		svc.On("GetProfile", mock.Anything, testUserID).Return(nil, service.ErrProfileNotFound).Once()

		resp, _ := app.Test(newRequest(http.MethodGet, "/settings/profile", ""))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("rename", func(t *testing.T) {
		svc.On("UpdateCompanyName", mock.Anything, testUserID, "Acme Supply").
			Return(&model.Profile{UserID: testUserID, CompanyName: "Acme Supply"}, nil).Once()

		resp, _ := app.Test(newRequest(http.MethodPut, "/settings/profile", `{"company_name":"Acme Supply"}`))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var got model.Profile
		decodeJSON(t, resp, &got)
		assert.Equal(t, "Acme Supply", got.CompanyName)
	})

	svc.AssertExpectations(t)
}

func TestChangePassword(t *testing.T) {
	svc := new(serviceMocks.MockSettingsService)
	app := newApp(true)
	app.Put("/settings/password", ChangePassword(svc))

	form := service.PasswordChange{Current: "secret1", New: "secret22", Confirm: "secret22"}

	t.Run("changed", func(t *testing.T) {
		svc.On("ChangePassword", mock.Anything, testUserID, form).Return(nil).Once()

		resp, _ := app.Test(newRequest(http.MethodPut, "/settings/password",
			`{"current_password":"secret1","new_password":"secret22","confirm_password":"secret22"}`))

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("wrong current password", func(t *testing.T) {
		svc.On("ChangePassword", mock.Anything, testUserID, form).
			Return(apperror.Validation("current password is incorrect")).Once()

		resp, _ := app.Test(newRequest(http.MethodPut, "/settings/password",
			`{"current_password":"secret1","new_password":"secret22","confirm_password":"secret22"}`))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "current password is incorrect", decodeError(t, resp).Error.Message)
	})

	svc.AssertExpectations(t)
}
