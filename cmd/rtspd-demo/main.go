// Command rtspd-demo runs a minimal RTSP server exposing one demo stream,
// the way the teacher's own examples/server* commands wire gortsplib
// against a synthetic source.
package main

import (
	"flag"
	"log"
	"net"

	rtspd "github.com/rtspkit/rtspd"
	"github.com/rtspkit/rtspd/examples/mediademo"
	"github.com/rtspkit/rtspd/pkg/auth"
)

func main() {
	addr := flag.String("addr", ":8554", "address to listen on")
	streamName := flag.String("stream", "demo", "name of the exposed stream")
	realm := flag.String("realm", "", "digest auth realm; empty disables auth")
	username := flag.String("user", "", "digest auth username")
	password := flag.String("pass", "", "digest auth password")
	multicastGroup := flag.String("multicast-group", "", "if set, serve the stream over this multicast group instead of unicast")
	multicastIface := flag.String("multicast-iface", "", "network interface to join the multicast group on")
	flag.Parse()

	server := rtspd.NewServer(*addr)

	if *realm != "" && *username != "" {
		db := auth.NewAuthDB(*realm, false)
		db.AddUser(*username, *password)
		server.AuthDB = db
	}

	var videoTrack *mediademo.Track
	var closeFn func() error

	if *multicastGroup != "" {
		group := net.ParseIP(*multicastGroup)
		if group == nil {
			log.Fatalf("rtspd-demo: invalid multicast group %q", *multicastGroup)
		}
		mt, err := mediademo.NewMulticastTrack("trackID=0", "H264", 90000, 96, 30, group, 5004, 255, *multicastIface)
		if err != nil {
			log.Fatalf("rtspd-demo: %v", err)
		}
		videoTrack = mt.Track
		closeFn = mt.Close
	} else {
		videoTrack = mediademo.NewUnicastTrack("trackID=0", "H264", 90000, 96, 30, 6970)
	}

	session := mediademo.NewSession(*streamName, "0.0.0.0", videoTrack)
	server.Registry.Add(session)

	addrOut, err := server.Listen()
	if err != nil {
		log.Fatalf("rtspd-demo: listen: %v", err)
	}
	log.Printf("rtspd-demo: listening on %s, stream %q", addrOut, *streamName)

	if closeFn != nil {
		defer closeFn()
	}

	if err := server.Serve(); err != nil {
		log.Fatalf("rtspd-demo: serve: %v", err)
	}
}
