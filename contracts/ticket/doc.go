/*
Package ticket contains implementation of the Ticket contract.

Ticket contract sells NEP-17 compatible TICKET tokens for GAS. Every ticket is
indivisible. Contract owner sets a price of a single ticket and an optional
seat catalogue on deployment, both can't be changed later. If the catalogue is
not empty, each ticket must be bought together with a free seat and every seat
can be sold only once.

Tickets are bought by GAS transfer to the contract with purchase details in
the data argument: ticket recipient, number of tickets, holder signature and
seats. The payment must be exactly the price of the requested tickets, a
failed purchase faults the whole transfer. The signature is bound to the
recipient so that a verifier could check the holder identity later and burn
the ticket.

# Contract notifications

Transfer notification. This is NEP-17 standard notification.

	Transfer:
	  - name: from
	    type: Hash160
	  - name: to
	    type: Hash160
	  - name: amount
	    type: Integer

Purchase notification. This notification is produced when tickets have been
bought.

	Purchase:
	  - name: from
	    type: Hash160
	  - name: to
	    type: Hash160
	  - name: amount
	    type: Integer
	  - name: seats
	    type: Array

VerifierAdded notification. This notification is produced when the owner adds
a new verifier.

	VerifierAdded:
	  - name: verifier
	    type: Hash160

Clear notification. This notification is produced when the owner withdraws
contract GAS.

	Clear:
	  - name: owner
	    type: Hash160
	  - name: amount
	    type: Integer
*/
package ticket
