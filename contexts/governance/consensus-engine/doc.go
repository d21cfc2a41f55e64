// Package consensusengine drives the quarterly-report consensus lifecycle:
// multi-round voting with CONSENTIR/OBJETAR/ABSTENERSE ballots, objection
// adjudication, and the PENDING -> IN_CONSENSUS -> CONSENSED/REJECTED state
// machine. A report carries at most one ACTIVA round at a time; marking a
// report CONSENSED closes that round and is blocked while any VALIDA
// objection is attached to it.
package consensusengine
