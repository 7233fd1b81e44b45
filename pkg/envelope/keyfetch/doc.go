// Package keyfetch provides clients for the snailcrypt key-release service.
//
// The service holds one RSA key pair per lockdate. The public key of a lockdate can be
// fetched at any time; the private key is only handed out once the lockdate has passed.
// Keys are returned as PEM text and parsed by the rsa package.
package keyfetch
