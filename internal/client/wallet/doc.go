// Package wallet reaches a browser-style Ethereum wallet through its
// EIP-1193 JSON-RPC methods (eth_requestAccounts, eth_accounts) and watches
// it for account changes.
package wallet
