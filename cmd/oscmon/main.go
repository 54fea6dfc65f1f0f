package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	goosc "github.com/chabad360/go-osc/osc"

	"github.com/italoadler/xi/midi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "ports":
		listPorts()
	case "ping":
		ping()
	case "listen":
		listen()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("xi backend monitor")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  ports           - List MIDI output ports")
	fmt.Println("  ping [host port]- Send a test OSC gate_on/gate_off pair")
	fmt.Println("  listen [port]   - Print incoming /xi messages")
}

func listPorts() {
	names := midi.OutPortNames()
	if len(names) == 0 {
		fmt.Println("no MIDI output ports")
		return
	}
	for i, name := range names {
		fmt.Printf("%d: %s\n", i, name)
	}
	midi.Close()
}

func ping() {
	host := "127.0.0.1"
	port := 57120
	if len(os.Args) >= 4 {
		host = os.Args[2]
		if p, err := strconv.Atoi(os.Args[3]); err == nil {
			port = p
		}
	}

	client := goosc.NewClient(host, port)

	on := goosc.NewMessage("/xi/gate_on")
	on.Append(int32(0))
	if err := client.Send(on); err != nil {
		fmt.Printf("send: %v\n", err)
		return
	}

	time.Sleep(200 * time.Millisecond)

	off := goosc.NewMessage("/xi/gate_off")
	off.Append(int32(0))
	if err := client.Send(off); err != nil {
		fmt.Printf("send: %v\n", err)
		return
	}

	fmt.Printf("sent gate_on/gate_off to %s:%d\n", host, port)
}

func listen() {
	port := 57120
	if len(os.Args) >= 3 {
		if p, err := strconv.Atoi(os.Args[2]); err == nil {
			port = p
		}
	}

	d := goosc.NewStandardDispatcher()
	d.AddMsgHandler("*", func(msg *goosc.Message) {
		fmt.Println(msg)
	})

	server := &goosc.Server{
		Addr:       fmt.Sprintf(":%d", port),
		Dispatcher: d,
	}
	fmt.Printf("listening on :%d\n", port)
	if err := server.ListenAndServe(); err != nil {
		fmt.Printf("serve: %v\n", err)
	}
}
