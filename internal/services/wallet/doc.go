/*
Package wallet manages the per-user balances that escrow releases and refunds
credit and that withdrawals debit.

Every balance change is a single atomic UPDATE plus a ledger row in the same
database transaction; the service never reads a balance, modifies it in Go and
writes it back. Wallet reads go through the Redis cache, which is invalidated
after each change commits.

Withdrawals require an approved KYC and a bank account on the profile. The
amount is debited when the request is made; an admin later marks the
withdrawal processed, or rejects it, which credits the amount back as a
withdrawal_reversal.
*/
package wallet
