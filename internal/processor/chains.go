package processor

// chainMenuEndpoints maps exact restaurant names to known structured-menu
// URLs. An extension point, not a general solution.
var chainMenuEndpoints = map[string]string{
	"Wendy's":        "https://www.wendys.com/api/menu",
	"Domino's Pizza": "https://www.dominos.com/media/menu.json",
	"Potbelly":       "https://www.potbelly.com/api/menu",
}

// ChainMenuURL returns the structured-menu endpoint for a known chain.
func ChainMenuURL(restaurantName string) (string, bool) {
	url, ok := chainMenuEndpoints[restaurantName]
	return url, ok
}
