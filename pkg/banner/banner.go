package banner

import (
	"fmt"
)

const banner = `
████████╗ █████╗  ██████╗ ███╗   ███╗███████╗
╚══██╔══╝██╔══██╗██╔════╝ ████╗ ████║██╔════╝
   ██║   ███████║██║  ███╗██╔████╔██║█████╗
   ██║   ██╔══██║██║   ██║██║╚██╔╝██║██╔══╝
   ██║   ██║  ██║╚██████╔╝██║ ╚═╝ ██║███████╗
   ╚═╝   ╚═╝  ╚═╝ ╚═════╝ ╚═╝     ╚═╝╚══════╝
`

// Print writes the startup banner with the effective runtime values.
func Print(addr, dbPath, version string) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", addr)
	fmt.Printf("DB Path:  %s\n", dbPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("POST /v1/auth/github              - Exchange an OAuth code for a token")
	fmt.Println("GET  /v1/topics                   - Global top list")
	fmt.Println("POST /v1/topics/{name}            - Create a topic")
	fmt.Println("POST /v1/topics/{name}/tags       - Endorse a tag")
	fmt.Println("GET  /metrics                     - Prometheus metrics")
	fmt.Println()
}
