// Package repository define las entidades del dominio OAuth2 y el contrato
// CredentialStore que los adapters de storage deben implementar.
//
// El core del protocolo (internal/oauth2) consume únicamente estas interfaces;
// nunca conoce el motor de persistencia concreto.
package repository
