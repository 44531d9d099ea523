// Package session provides the interactive terminal screens of wsclient.
//
// Model is a full-screen session: a scrolling log of every frame sent and
// received above a message input. Lines starting with "/" are commands:
//
//	/ping [data]    send a Ping
//	/pong [data]    send an unsolicited Pong
//	/binary <hex>   send a Binary frame
//	/text <msg>     send a Text frame even in binary mode
//	/flush          retry a partially written frame
//	/close          start the closing handshake
//	/quit           leave the session
//
// Anything else is sent as one Text frame (Binary with Options.Binary).
// ctrl+r reconnects after the connection ends.
//
// Client callbacks reach the screen through a non-blocking queue, so a
// callback fired while Update is inside Client.Send cannot deadlock.
//
// PickerModel browses the local network for _ws._tcp services and lets the
// user pick one or type a URL.
//
// Example:
//
//	err := session.Run(ctx, "ws://localhost:8080/", session.Options{
//		Client: []client.Option{client.WithAutoReply(true)},
//	})
package session
