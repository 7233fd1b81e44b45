// Package client implements snailcrypt time-lock encryption clients.
//
// A client fetches the key pair of a lockdate from the key-release service, encrypts or
// decrypts with it and reads or writes the envelope. There is one client per envelope
// version: V2Client wraps a V1Client and only adds the hint, V3Client wraps a V2Client
// and only adds the filename. VersionSelector picks the right one for each call.
package client
