package config

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("origin", isOrigin); err != nil {
		return nil, nil, fmt.Errorf("failed to register origin validation: %w", err)
	}
	if err := validate.RegisterTranslation("origin", trans, func(ut ut.Translator) error {
		return ut.Add("origin", "{0} must be an http or https origin without a query", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("origin", strings.TrimPrefix(fe.Namespace(), "Config."))
		return t
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to register origin translation: %w", err)
	}
	if err := validate.RegisterTranslation("backend_required", trans, func(ut ut.Translator) error {
		return ut.Add("backend_required", "{0} is required when the {1} backend is selected", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("backend_required", strings.TrimPrefix(fe.Namespace(), "Config."), fe.Param())
		return t
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to register backend_required translation: %w", err)
	}

	validate.RegisterStructValidation(validateGatewayConfig, GatewayConfig{})
	validate.RegisterStructValidation(validateSharesConfig, SharesConfig{})

	return validate, trans, nil
}

func isOrigin(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != "" && u.RawQuery == "" && u.Fragment == ""
}

func validateGatewayConfig(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(GatewayConfig)
	switch cfg.Backend {
	case GatewayFirebase:
		if cfg.Firebase.URL == "" {
			sl.ReportError(cfg.Firebase.URL, "firebase.url", "URL", "backend_required", GatewayFirebase)
		}
	case GatewayRPC:
		if cfg.RPC.BaseURL == "" {
			sl.ReportError(cfg.RPC.BaseURL, "rpc.base_url", "BaseURL", "backend_required", GatewayRPC)
		}
	}
}

func validateSharesConfig(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(SharesConfig)
	if cfg.Backend == SharesS3 && cfg.S3.Bucket == "" {
		sl.ReportError(cfg.S3.Bucket, "s3.bucket", "Bucket", "backend_required", SharesS3)
	}
}
