// Package client implements the connection side of the WebSocket client.
//
// A Client moves through three states:
//
//	Disconnected --Connect--> Connecting --101--> Connected
//	     ^                        |                   |
//	     +---- timeout/reject ----+---- EOF/error ----+
//
// Connect returns immediately. A background goroutine dials, performs the
// upgrade handshake and then reads from the transport, decoding frames with
// protocol.Reassembler and passing each one to Handler.OnRecv along with its
// FIN flag. Fragmented messages are not reassembled.
//
// Send encodes one masked frame and makes a single write attempt. When the
// transport accepts only part of it, the rest is kept and Send reports the
// unsent byte count; the next Send or Flush writes it first.
//
// Example:
//
//	c := client.New(client.HandlerFuncs{
//		Connect: func(r client.ConnectResult) { log.Println("connect:", r) },
//		Recv: func(m client.Message, fin bool) {
//			log.Printf("%s: %s", m.Type, m.Data)
//		},
//	})
//	c.Connect("ws://localhost:8080/echo")
//	...
//	c.Send(protocol.Text, []byte("hello"))
//	c.Shutdown(ctx)
package client
