package vault

type Config struct {
	Address string `env:"VAULT_ADDR,required"`                // Address is the base URL of the Vault server.
	Token   string `env:"VAULT_TOKEN,required"`               // Token is the static credential used to authenticate.
	Mount   string `env:"VAULT_KV_MOUNT" envDefault:"secret"` // Mount is the KV v2 mount point holding file keys.
}
