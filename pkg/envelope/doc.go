// Package envelope implements the snailcrypt envelope: the versioned, colon-delimited
// string produced by a time-lock encrypt call.
//
// An envelope carries the lockdate that selects the key pair held by the key-release
// service, the chunked RSA ciphertext and, from version 2 onward, a plaintext hint and,
// from version 3 onward, a filename. Every field after the version tag is base64 encoded:
//
//	V1: 1:<b64 lockdate>:<b64 cipher>
//	V2: 2:<b64 lockdate>:<b64 cipher>:<b64 hint>
//	V3: 3:<b64 lockdate>:<b64 cipher>:<b64 hint>:<b64 filename>
//
// A version n envelope is the version n-1 envelope with its tag replaced and one field
// appended. Wrap and Unwrap perform exactly that rewrite so that clients for newer
// versions can delegate cipher production to older ones.
//
// The cipher itself is produced by the rsa subpackage; keys are obtained through the
// keyfetch subpackage.
package envelope
