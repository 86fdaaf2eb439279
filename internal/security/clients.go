package security

// In-memory client registry (replace with DB/config later)
type Client struct {
	ID      string
	Secret  string
	Perms   []string // e.g. {"orders.read","orders.write"}
	Enabled bool
}

var Clients = map[string]Client{
	"bookgarden-web":   {ID: "bookgarden-web", Secret: "web-secret", Perms: []string{"orders.read", "orders.write"}, Enabled: true},
	"bookgarden-admin": {ID: "bookgarden-admin", Secret: "admin-secret", Perms: []string{"orders.read", "orders.write", "orders.manage"}, Enabled: true},
	"svc-analytics":    {ID: "svc-analytics", Secret: "ana-secret", Perms: []string{"orders.read"}, Enabled: true},
}
