package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jakechorley/shift-rota/pkg/core/model"
	"github.com/jakechorley/shift-rota/pkg/core/services"
)

var validate = newValidator()

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// windowParams selects a site and a window, either as startDate+days or as month+year
type windowParams struct {
	SiteID    string `json:"siteId" validate:"required"`
	StartDate string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	Days      int    `json:"days" validate:"min=0"`
	Month     int    `json:"month" validate:"min=0,max=12"`
	Year      int    `json:"year" validate:"min=0"`
}

func (p windowParams) window() (model.DateRange, error) {
	if p.StartDate != "" {
		start, err := model.ParseDate(p.StartDate)
		if err != nil {
			return model.DateRange{}, badRequest("startDate", err.Error())
		}
		if p.Days <= 0 {
			return model.DateRange{}, badRequest("days", "must be positive when startDate is set")
		}
		return model.NewDateRange(start, p.Days), nil
	}
	if p.Month == 0 || p.Year == 0 {
		return model.DateRange{}, badRequest("window", "startDate and days, or month and year, are required")
	}
	return services.MonthWindow(p.Year, time.Month(p.Month))
}

func badRequest(field, message string) error {
	return &services.ValidationError{Field: field, Message: message}
}

// checkStruct runs the validator tags and converts failures to a ValidationError
func checkStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return badRequest(errs[0].Field(), fmt.Sprintf("failed %q check", errs[0].Tag()))
		}
		return badRequest("body", err.Error())
	}
	return nil
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequest("body", err.Error())
	}
	return checkStruct(v)
}

// windowFromQuery reads windowParams from siteId, startDate, days, month and year
func windowFromQuery(q url.Values) (windowParams, model.DateRange, error) {
	p := windowParams{SiteID: q.Get("siteId"), StartDate: q.Get("startDate")}

	for _, f := range []struct {
		name string
		dst  *int
	}{{"days", &p.Days}, {"month", &p.Month}, {"year", &p.Year}} {
		raw := q.Get(f.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return p, model.DateRange{}, badRequest(f.name, "must be an integer")
		}
		*f.dst = n
	}

	if err := checkStruct(p); err != nil {
		return p, model.DateRange{}, err
	}
	window, err := p.window()
	return p, window, err
}

