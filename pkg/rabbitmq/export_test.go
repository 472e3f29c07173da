package rabbitmq

var Settle = settle
