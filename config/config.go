package config

import (
	"log"
	"strings"
	"time"

	"auction-house/internal/domain/commission"
	"auction-house/internal/domain/triage"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

var (
	APP_ENV    string
	PORT       string
	DB_DRIVER  string
	DB_URL     string
	JWT_SECRET string
	JWT_TTL    time.Duration

	CORS_ORIGIN string
	APP_URL     string

	STORAGE_DRIVER  string
	UPLOAD_DIR      string
	PUBLIC_BASE_URL string
	S3_BUCKET       string
	S3_REGION       string
	S3_ENDPOINT     string
	S3_ACCESS_KEY   string
	S3_SECRET_KEY   string

	NATS_URL string

	STRIPE_SECRET_KEY     string
	STRIPE_WEBHOOK_SECRET string

	GOOGLE_CLIENT_ID         string
	GOOGLE_CLIENT_SECRET     string
	GOOGLE_REDIRECT_URL      string
	GOOGLE_FRONTEND_REDIRECT string

	PDF_CACHE_SIZE int

	Commission commission.Policy
	Withdrawal commission.WithdrawalPolicy
	Triage     triage.Policy
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("JWT_TTL_HOURS", 24)
	v.SetDefault("APP_URL", "http://localhost:3000")
	v.SetDefault("STORAGE_DRIVER", "disk")
	v.SetDefault("UPLOAD_DIR", "public/uploads")
	v.SetDefault("PUBLIC_BASE_URL", "/uploads")
	v.SetDefault("BUYERS_PREMIUM_RATE", "0.10")
	v.SetDefault("SELLERS_COMMISSION_RATE", "0.10")
	v.SetDefault("TRIAGE_THRESHOLD", "20000")
	v.SetDefault("WITHDRAWAL_FEE_RATE", "0.05")
	v.SetDefault("WITHDRAWAL_FEE_WINDOW_DAYS", 14)
	v.SetDefault("PDF_CACHE_SIZE", 32)
}

// LoadEnv reads .env, then the environment, then an optional config.yaml.
// Environment variables win over the file.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("Invalid config file: %v", err)
		}
	}
	v.AutomaticEnv()

	if err := apply(v); err != nil {
		log.Fatal(err)
	}
}

func apply(v *viper.Viper) error {
	APP_ENV = v.GetString("APP_ENV")
	PORT = v.GetString("PORT")
	DB_DRIVER = strings.ToLower(v.GetString("DB_DRIVER"))
	DB_URL = v.GetString("DB_URL")
	JWT_SECRET = v.GetString("JWT_SECRET")
	JWT_TTL = time.Duration(v.GetInt("JWT_TTL_HOURS")) * time.Hour

	for key, val := range map[string]string{"DB_URL": DB_URL, "JWT_SECRET": JWT_SECRET} {
		if val == "" {
			return &missingError{key: key}
		}
	}
	if DB_DRIVER != "postgres" && DB_DRIVER != "sqlite" {
		return &invalidError{key: "DB_DRIVER", value: DB_DRIVER}
	}

	CORS_ORIGIN = v.GetString("CORS_ORIGIN")
	APP_URL = v.GetString("APP_URL")

	STORAGE_DRIVER = strings.ToLower(v.GetString("STORAGE_DRIVER"))
	UPLOAD_DIR = v.GetString("UPLOAD_DIR")
	PUBLIC_BASE_URL = v.GetString("PUBLIC_BASE_URL")
	S3_BUCKET = v.GetString("S3_BUCKET")
	S3_REGION = v.GetString("S3_REGION")
	S3_ENDPOINT = v.GetString("S3_ENDPOINT")
	S3_ACCESS_KEY = v.GetString("S3_ACCESS_KEY")
	S3_SECRET_KEY = v.GetString("S3_SECRET_KEY")
	if STORAGE_DRIVER != "disk" && STORAGE_DRIVER != "s3" {
		return &invalidError{key: "STORAGE_DRIVER", value: STORAGE_DRIVER}
	}
	if STORAGE_DRIVER == "s3" && S3_BUCKET == "" {
		return &missingError{key: "S3_BUCKET"}
	}

	NATS_URL = v.GetString("NATS_URL")

	STRIPE_SECRET_KEY = v.GetString("STRIPE_SECRET_KEY")
	STRIPE_WEBHOOK_SECRET = v.GetString("STRIPE_WEBHOOK_SECRET")

	GOOGLE_CLIENT_ID = v.GetString("GOOGLE_CLIENT_ID")
	GOOGLE_CLIENT_SECRET = v.GetString("GOOGLE_CLIENT_SECRET")
	GOOGLE_REDIRECT_URL = v.GetString("GOOGLE_REDIRECT_URL")
	GOOGLE_FRONTEND_REDIRECT = v.GetString("GOOGLE_FRONTEND_REDIRECT")

	PDF_CACHE_SIZE = v.GetInt("PDF_CACHE_SIZE")

	return loadPolicies(v)
}

func loadPolicies(v *viper.Viper) error {
	rate := func(key string) (decimal.Decimal, error) {
		d, err := decimal.NewFromString(strings.TrimSpace(v.GetString(key)))
		if err != nil || d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1)) {
			return decimal.Zero, &invalidError{key: key, value: v.GetString(key)}
		}
		return d, nil
	}

	premium, err := rate("BUYERS_PREMIUM_RATE")
	if err != nil {
		return err
	}
	sellers, err := rate("SELLERS_COMMISSION_RATE")
	if err != nil {
		return err
	}
	fee, err := rate("WITHDRAWAL_FEE_RATE")
	if err != nil {
		return err
	}
	threshold, err := decimal.NewFromString(strings.TrimSpace(v.GetString("TRIAGE_THRESHOLD")))
	if err != nil || !threshold.IsPositive() {
		return &invalidError{key: "TRIAGE_THRESHOLD", value: v.GetString("TRIAGE_THRESHOLD")}
	}
	window := v.GetInt("WITHDRAWAL_FEE_WINDOW_DAYS")
	if window < 0 {
		return &invalidError{key: "WITHDRAWAL_FEE_WINDOW_DAYS", value: v.GetString("WITHDRAWAL_FEE_WINDOW_DAYS")}
	}

	Commission = commission.DefaultPolicy()
	Commission.BuyersPremiumRate = premium
	Commission.SellersCommissionRate = sellers

	Withdrawal = commission.DefaultWithdrawalPolicy()
	Withdrawal.Rate = fee
	Withdrawal.WindowDays = window

	Triage = triage.DefaultPolicy()
	Triage.Threshold = threshold
	return nil
}

type missingError struct{ key string }

func (e *missingError) Error() string {
	return "Missing required environment variable: " + e.key
}

type invalidError struct{ key, value string }

func (e *invalidError) Error() string {
	return "Invalid value for " + e.key + ": " + e.value
}
