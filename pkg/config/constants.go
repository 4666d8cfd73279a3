package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "HELLOBUDDY"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)
