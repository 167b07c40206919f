package config

import "time"

type Config struct {
	Web        Web
	DB         DB
	Cors       Cors
	Cloudinary Cloudinary
	Razorpay   Razorpay
	Oauth      Oauth
	Rate       Rate
	Upload     Upload
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type DB struct {
	User       string `conf:"default:postgres"`
	Password   string `conf:"default:postgres,mask"`
	Host       string `conf:"default:localhost:5432"`
	Name       string `conf:"default:lms"`
	DisableTLS bool   `conf:"default:true"`
}

type Cors struct {
	Origin string `conf:"default:http://localhost:5173"`
}

type Cloudinary struct {
	CloudName string `conf:"default:demo"`
	Key       string
	Secret    string `conf:"mask"`
	Folder    string `conf:"default:Learning-Management-System"`
}

type Razorpay struct {
	KeyID     string
	KeySecret string `conf:"mask"`
}

type Provider struct {
	Client      string
	Secret      string `conf:"mask"`
	URL         string `conf:"default:https://accounts.google.com"`
	RedirectURL string `conf:"default:http://localhost:8000/auth/oauth-callback/google"`
}

type Oauth struct {
	Google           Provider
	DiscoveryTimeout time.Duration `conf:"default:30s"`
	LoginRedirectURL string        `conf:"default:http://localhost:5173"`
}

type Rate struct {
	Burst       int     `conf:"default:20"`
	ExpiryMins  int     `conf:"default:10"`
	LimitPerSec float64 `conf:"default:10"`
}

type Upload struct {
	Dir      string `conf:"default:uploads"`
	MaxBytes int64  `conf:"default:209715200"`
}
