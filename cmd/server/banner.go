package main

import (
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/mdp/qrterminal/v3"
)

// lanIP picks the address of the interface that routes outward. No packet
// is sent; dialing UDP only selects a source address.
func lanIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

func printBanner(w io.Writer, ip, port, root string) {
	url := "http://" + net.JoinHostPort(ip, port) + "/"

	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Sharing %s\n", root)
	fmt.Fprintf(w, "Local:   http://localhost:%s/\n", port)
	fmt.Fprintf(w, "Network: %s\n", url)
	fmt.Fprintln(w, "Delete requests will ask for approval here.")
	fmt.Fprintln(w, strings.Repeat("=", 60))

	qrterminal.GenerateWithConfig(url, qrterminal.Config{
		Level:          qrterminal.M,
		Writer:         w,
		HalfBlocks:     true,
		BlackChar:      qrterminal.BLACK_BLACK,
		WhiteBlackChar: qrterminal.WHITE_BLACK,
		WhiteChar:      qrterminal.WHITE_WHITE,
		BlackWhiteChar: qrterminal.BLACK_WHITE,
		QuietZone:      1,
	})
}
