package result

// ErrorCode represents the error code of a checkpoint or chain operation
type ErrorCode int

const (
	// CodeOK for success
	CodeOK ErrorCode = 0

	// CodeGenericError for generic error
	CodeGenericError ErrorCode = 1

	// CodeInvalidSignature indicates the message signature does not verify
	// against the checkpoint master public key.
	CodeInvalidSignature ErrorCode = 101

	// CodeInconsistentCheckpoint indicates the received checkpoint conflicts
	// with the currently enforced one. This is the compromised-key or
	// operator-mistake signal.
	CodeInconsistentCheckpoint ErrorCode = 102

	// CodeChainIntegrityFailure indicates an ancestor walk hit a missing
	// parent link, i.e. local block index corruption.
	CodeChainIntegrityFailure ErrorCode = 103

	// CodePersistenceFailure indicates a durable write of checkpoint state failed.
	CodePersistenceFailure ErrorCode = 104

	// CodeMasterKeyUnavailable indicates the node attempted to issue a
	// checkpoint without a valid master private key configured.
	CodeMasterKeyUnavailable ErrorCode = 105
)
