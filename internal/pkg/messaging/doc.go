// Package messaging carries domain events between modules over NATS, NSQ,
// Kafka, Google Pub/Sub or an in-process queue.
//
// Headers travel with every backend so the correlation id set at the HTTP
// edge shows up in consumer logs.
package messaging
